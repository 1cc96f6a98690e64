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

package core

import (
	"strings"
	"time"
)

// the scheme whose archives the registry knows how to read from disk
const NeurobankScheme = "neurobank"

// the archive name given to the synthetic location pointing back at the
// registry's own download endpoint
const RegistryArchiveName = "registry"

// A DataType describes the format of a resource's content and whether the
// registry may serve it directly.
type DataType struct {
	// unique short name
	Name string `json:"name" validate:"required,slug,max=32"`
	// MIME type of the content
	ContentType string `json:"content_type" validate:"max=128"`
	// true if resources of this type can be downloaded as a single file
	Downloadable bool `json:"downloadable"`
	// default filename suffix for clients
	Extension string `json:"extension" validate:"max=32"`
}

// An Archive is a named storage authority identified by its scheme and root.
type Archive struct {
	// unique short name
	Name string `json:"name" validate:"required,slug,max=32"`
	// resolution strategy for the root (e.g. "neurobank")
	Scheme string `json:"scheme" validate:"required,max=16"`
	// path or URL prefix
	Root string `json:"root" validate:"required,max=512"`
}

// A Location records that a resource is stored in an archive.
type Location struct {
	Id           int64
	ResourceName string
	Archive      Archive
}

// Returns the flattened representation of the location used in listings.
func (l Location) View() LocationView {
	return LocationView{
		ArchiveName:  l.Archive.Name,
		Scheme:       l.Archive.Scheme,
		Root:         l.Archive.Root,
		ResourceName: l.ResourceName,
	}
}

// A LocationView is the client-facing shape of a location.
type LocationView struct {
	ArchiveName  string `json:"archive_name" example:"archive"`
	Scheme       string `json:"scheme" example:"neurobank"`
	Root         string `json:"root" example:"/home/data/archive"`
	ResourceName string `json:"resource_name" example:"ab12cd34"`
}

// A Resource is a named, typed piece of data registered with the registry.
type Resource struct {
	Id int64 `json:"-"`
	// unique identifier
	Name string `json:"name" validate:"required,slug,max=255"`
	// SHA1 hash of the content, if it should never change
	Sha1 string `json:"sha1" validate:"omitempty,len=40,hexadecimal"`
	// datatype
	Dtype DataType `json:"dtype" validate:"-"`
	// free-form metadata
	Metadata map[string]any `json:"metadata"`
	// places the resource is stored, in the order they were added
	Locations []Location `json:"-"`
	// name of the user who registered the resource
	CreatedBy string `json:"created_by"`
	// time of registration
	CreatedOn time.Time `json:"created_on"`
}

// Returns a filename for the resource, appending the datatype's extension
// when the name doesn't already carry it.
func (r Resource) Filename() string {
	ext := strings.TrimPrefix(r.Dtype.Extension, ".")
	if ext == "" || strings.HasSuffix(r.Name, "."+ext) {
		return r.Name
	}
	return r.Name + "." + ext
}

// A LocationFilter narrows a location listing to particular archives.
type LocationFilter struct {
	// case-insensitive substring of the archive name
	Archive string
	// case-insensitive prefix of the archive scheme
	Scheme string
}

// Returns true if the filter names an archive or scheme.
func (f LocationFilter) IsSet() bool {
	return f.Archive != "" || f.Scheme != ""
}

// Returns true if the location passes the filter.
func (f LocationFilter) Matches(loc Location) bool {
	if f.Archive != "" &&
		!strings.Contains(strings.ToLower(loc.Archive.Name), strings.ToLower(f.Archive)) {
		return false
	}
	if f.Scheme != "" &&
		!strings.HasPrefix(strings.ToLower(loc.Archive.Scheme), strings.ToLower(f.Scheme)) {
		return false
	}
	return true
}
