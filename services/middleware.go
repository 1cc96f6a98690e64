package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/resolver"
)

type contextKey int

const clientViewKey contextKey = iota

// records the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// returns the scheme of an inbound request, honoring a proxy's
// X-Forwarded-Proto header
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// the registry's URLs as seen by the client making a request
type clientView struct {
	// scheme of the request ("http" or "https")
	scheme string
	// host (and port) the client addressed
	host string
	// absolute URL of the registry's base path
	base string
}

func newClientView(r *http.Request) clientView {
	scheme := requestScheme(r)
	return clientView{
		scheme: scheme,
		host:   r.Host,
		base:   fmt.Sprintf("%s://%s%s", scheme, r.Host, config.Service.BasePath),
	}
}

// returns the view stashed by requestContext, or that of a local client if
// there is none
func clientViewFrom(ctx context.Context) clientView {
	if view, ok := ctx.Value(clientViewKey).(clientView); ok {
		return view
	}
	host := fmt.Sprintf("localhost:%d", config.Service.Port)
	return clientView{
		scheme: "http",
		host:   host,
		base:   fmt.Sprintf("http://%s%s", host, config.Service.BasePath),
	}
}

// returns the absolute URL of a path under the registry's base path
func absoluteURL(ctx context.Context, path string) string {
	return clientViewFrom(ctx).base + path
}

// describes the registry's download endpoint for location listings
func requestInfo(ctx context.Context) resolver.RequestInfo {
	view := clientViewFrom(ctx)
	return resolver.RequestInfo{
		Scheme:       view.scheme,
		DownloadBase: view.base + "/download/",
	}
}

// This middleware assigns each request an id, records what the handlers
// need to know about the client's view of the registry, and logs the
// request when it completes.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := uuid.New().String()
		w.Header().Set("X-Request-Id", requestId)

		ctx := context.WithValue(r.Context(), clientViewKey, newClientView(r))
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		slog.Info(fmt.Sprintf("%s %s %d (%s)", r.Method, r.URL.Path, recorder.status,
			time.Since(start).Round(time.Microsecond)), "request_id", requestId)
	})
}
