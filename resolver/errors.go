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

package resolver

import (
	"errors"
	"fmt"
)

// All errors describing why a resource can't be delivered match this value
// under errors.Is.
var ErrNotAvailableForDownload = errors.New("resource is not available for download")

// This error type is returned when a resource's datatype is not marked as
// downloadable. No location is examined in this case.
type NonDownloadableDtypeError struct {
	Resource, Dtype string
}

func (e NonDownloadableDtypeError) Error() string {
	return "The resource is not of a downloadable datatype"
}

func (e NonDownloadableDtypeError) Is(target error) bool {
	return target == ErrNotAvailableForDownload
}

// The outcome of trying to resolve a resource in one of its locations.
type LocationError struct {
	Archive, Scheme string
	Err             error
}

// This error type is returned when a location's archive uses a scheme with
// no resolution strategy, and also when none of a resource's locations could
// be resolved. In the latter case Attempts records why each location failed.
type SchemeNotSupportedError struct {
	Resource string
	// the unsupported scheme (per-location failures only)
	Scheme   string
	Attempts []LocationError
}

func (e SchemeNotSupportedError) Error() string {
	return "The requested resource is not in an archive that uses a scheme supported by this registry"
}

func (e SchemeNotSupportedError) Is(target error) bool {
	return target == ErrNotAvailableForDownload
}

// Exposes the per-location failures to errors.Is and errors.As.
func (e SchemeNotSupportedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, attempt := range e.Attempts {
		errs[i] = attempt.Err
	}
	return errs
}

// This error type is returned when a resource's archive is readable but the
// resource isn't present in its shard directory.
type MissingFileError struct {
	Resource, Directory string
}

func (e MissingFileError) Error() string {
	return fmt.Sprintf("Could not find resource '%s' in directory %s", e.Resource, e.Directory)
}

func (e MissingFileError) Is(target error) bool {
	return target == ErrNotAvailableForDownload
}

// This error type is returned when a resource resolves to a directory or some
// other entry that isn't a regular file.
type NotAFileError struct {
	Resource, Path string
}

func (e NotAFileError) Error() string {
	return fmt.Sprintf("Resource '%s' was found in directory %s, but it is not a file, so it cannot be downloaded",
		e.Resource, e.Path)
}

func (e NotAFileError) Is(target error) bool {
	return target == ErrNotAvailableForDownload
}

// This error type is returned by ResolveExtension when neither the bare path
// nor any extension of it exists.
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("No file matching '%s' was found", e.Path)
}
