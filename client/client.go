// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// This package contains a client for remote neurobank registries, used to
// look up resources and download their content.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/StalkR/hsts"
)

// maximum number of redirects followed for a single request
const maxRedirects = 10

// This error type is returned when a registry redirects an HTTPS request to
// an HTTP URL.
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The endpoint %s is attempting to downgrade an HTTPS request to HTTP",
		e.Endpoint)
}

// This error type is returned when a registry answers a request with an
// error status.
type ResponseError struct {
	Status  int
	Message string
}

func (e ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registry responded with %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("registry responded with %d: %s", e.Status, e.Message)
}

// checks redirects, refusing to follow an HTTPS request to an HTTP URL
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme == "http" && via[len(via)-1].URL.Scheme == "https" {
		return &DowngradedRedirectError{
			Endpoint: fmt.Sprintf("%s%s", req.URL.Host, req.URL.Path),
		}
	}
	return nil
}

// Here's a secure HTTP client for talking to registries. It sets the given
// timeout and enables HTTP Strict Transport Security (HSTS) on top of the
// given transport (or the default one if nil).
func SecureHttpClient(timeout time.Duration, transport http.RoundTripper) http.Client {
	client := http.Client{
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
	}
	client.Transport = hsts.New(transport) // enable HSTS
	return client
}

// A resource as described by a remote registry.
type Resource struct {
	Name        string         `json:"name"`
	Sha1        string         `json:"sha1"`
	Dtype       string         `json:"dtype"`
	Metadata    map[string]any `json:"metadata"`
	Locations   []string       `json:"locations"`
	Filename    string         `json:"filename"`
	DownloadUrl string         `json:"download_url"`
}

// A Client talks to the registry at a base URL.
type Client struct {
	base *url.URL
	http http.Client
}

// Creates a client for the registry at the given URL, using the given
// transport (nil for the default).
func New(registryUrl string, timeout time.Duration, transport http.RoundTripper) (*Client, error) {
	base, err := url.Parse(registryUrl)
	if err != nil {
		return nil, err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("Invalid registry URL: %s (must be http or https)", registryUrl)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &Client{base: base, http: SecureHttpClient(timeout, transport)}, nil
}

// returns the URL of the given path under the registry's base URL
func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// sends a GET request, returning the response if it succeeded
func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp, nil
}

// extracts the detail of a problem+json error response
func responseError(resp *http.Response) error {
	var problem struct {
		Detail string `json:"detail"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if json.Unmarshal(body, &problem) != nil {
		problem.Detail = strings.TrimSpace(string(body))
	}
	return ResponseError{Status: resp.StatusCode, Message: problem.Detail}
}

// Retrieves the description of the named resource.
func (c *Client) Resource(ctx context.Context, name string) (Resource, error) {
	var resource Resource
	resp, err := c.get(ctx, c.endpoint("resources/"+url.PathEscape(name)+"/"))
	if err != nil {
		return resource, err
	}
	defer resp.Body.Close()
	err = json.NewDecoder(resp.Body).Decode(&resource)
	return resource, err
}

// Downloads the content of the named resource into w, returning the
// filename suggested by the registry and the number of bytes written.
func (c *Client) Download(ctx context.Context, name string, w io.Writer) (string, int64, error) {
	resp, err := c.get(ctx, c.endpoint("download/"+url.PathEscape(name)))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	filename := name
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if params["filename"] != "" {
			filename = params["filename"]
		}
	}
	n, err := io.Copy(w, resp.Body)
	return filename, n, err
}
