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

package manifest

import (
	"encoding/json"
	"strings"
)

// a Frictionless data package describing the content of an archive
// (https://specs.frictionlessdata.io/data-package/)
type DataPackage struct {
	// list of contributors to the data package
	Contributors []Contributor `json:"contributors,omitempty"`
	// a timestamp indicated when the package was created
	Created string `json:"created,omitempty"`
	// a Markdown description of the data package
	Description string `json:"description,omitempty"`
	// an array of string keywords to assist users searching for the data package
	// in catalogs
	Keywords []string `json:"keywords,omitempty"`
	// the name of the data package
	Name string `json:"name"`
	// the profile of this descriptor (e.g. "data-package")
	// (https://specs.frictionlessdata.io/profiles/#language)
	Profile string `json:"profile,omitempty"`
	// a list of resources that belong to the package
	Resources []DataResource `json:"resources"`
	// a title or one sentence description for the data package
	Title string `json:"title,omitempty"`
}

// a Frictionless data resource describing one registered resource's file
// (https://specs.frictionlessdata.io/data-resource/)
type DataResource struct {
	// the size of the resource's file in bytes
	Bytes int64 `json:"bytes"`
	// indicates the format of the resource's file, often used as an extension
	Format string `json:"format,omitempty"`
	// the hash for the resource's file (algorithms other than MD5 are indicated
	// with a prefix to the hash delimited by a colon)
	Hash string `json:"hash,omitempty"`
	// the mediatype/mimetype of the resource (optional, e.g. "audio/wav")
	MediaType string `json:"mediatype,omitempty"`
	// the registered resource name, lowercased
	Name string `json:"name"`
	// the path of the resource's file relative to the archive root
	Path string `json:"path"`
	// the resource's datatype
	Title string `json:"title,omitempty"`
}

// call this to get a string containing the name of the hashing algorithm used
// by the receiver
func (res DataResource) HashAlgorithm() string {
	colon := strings.Index(res.Hash, ":")
	if colon != -1 {
		return res.Hash[:colon]
	} else {
		return "md5"
	}
}

// information about a contributor to a DataPackage
type Contributor struct {
	// the contributor's email address
	Email string `json:"email,omitempty"`
	// the role of the contributor ("author", "publisher", "maintainer",
	// "wrangler", "contributor")
	Role string `json:"role"`
	// name/title of the contributor (name for person, name/title of organization)
	Title string `json:"title"`
}

// converts the data package to the generic descriptor form expected by
// datapackage-go
func (p DataPackage) descriptor() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var descriptor map[string]any
	err = json.Unmarshal(data, &descriptor)
	return descriptor, err
}
