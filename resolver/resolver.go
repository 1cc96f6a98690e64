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

// This package resolves registered resources to files on disk and presents
// their locations to clients.
package resolver

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/melizalab/nbank-registry/core"
)

// A Strategy finds the local file holding the named resource in an archive.
type Strategy func(fsys afero.Fs, archive core.Archive, resourceName string) (string, error)

// A Resolver maps resources to filesystem paths using one strategy per
// archive scheme. It holds no mutable state once constructed and is safe
// for concurrent use.
type Resolver struct {
	fs         afero.Fs
	strategies map[string]Strategy
}

// Creates a resolver that probes the given filesystem and understands the
// neurobank scheme.
func New(fsys afero.Fs) *Resolver {
	return &Resolver{
		fs: fsys,
		strategies: map[string]Strategy{
			core.NeurobankScheme: resolveNeurobank,
		},
	}
}

// Creates a resolver over the host filesystem.
func NewOsResolver() *Resolver {
	return New(afero.NewOsFs())
}

// Returns the filesystem the resolver probes.
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// Registers a strategy for an additional scheme, replacing any existing one.
// Must be called before the resolver is shared.
func (r *Resolver) Register(scheme string, strategy Strategy) {
	r.strategies[scheme] = strategy
}

// Returns true if the resolver has a strategy for the given scheme.
func (r *Resolver) Supports(scheme string) bool {
	_, found := r.strategies[scheme]
	return found
}

// Resolves the named resource within a single archive, without regard to
// the resource's datatype.
func (r *Resolver) ResolveIn(archive core.Archive, resourceName string) (string, error) {
	strategy, found := r.strategies[archive.Scheme]
	if !found {
		return "", SchemeNotSupportedError{Resource: resourceName, Scheme: archive.Scheme}
	}
	return strategy(r.fs, archive, resourceName)
}

// Returns the path of a file holding the resource's content, trying its
// locations in order and returning the first that resolves. Fails with
// NonDownloadableDtypeError before touching the filesystem if the datatype
// isn't downloadable, and with SchemeNotSupportedError if no location
// resolves.
func (r *Resolver) ResolveToPath(resource core.Resource) (string, error) {
	if !IsDownloadable(resource) {
		return "", NonDownloadableDtypeError{
			Resource: resource.Name,
			Dtype:    resource.Dtype.Name,
		}
	}

	attempts := make([]LocationError, 0, len(resource.Locations))
	for _, loc := range resource.Locations {
		path, err := r.ResolveIn(loc.Archive, resource.Name)
		if err == nil {
			return path, nil
		}
		slog.Debug(fmt.Sprintf("Couldn't resolve %s in archive %s: %s",
			resource.Name, loc.Archive.Name, err))
		attempts = append(attempts, LocationError{
			Archive: loc.Archive.Name,
			Scheme:  loc.Archive.Scheme,
			Err:     err,
		})
	}
	return "", SchemeNotSupportedError{
		Resource: resource.Name,
		Attempts: attempts,
	}
}

// locates a resource in a neurobank archive's sharded resources directory
func resolveNeurobank(fsys afero.Fs, archive core.Archive, resourceName string) (string, error) {
	base := BasePath(archive.Root, resourceName)
	path, err := ResolveExtension(fsys, base)
	if err != nil {
		return "", MissingFileError{
			Resource:  resourceName,
			Directory: filepath.Dir(base),
		}
	}
	info, err := fsys.Stat(path)
	if err != nil {
		// removed since it was found
		return "", MissingFileError{
			Resource:  resourceName,
			Directory: filepath.Dir(base),
		}
	}
	if !info.Mode().IsRegular() {
		return "", NotAFileError{Resource: resourceName, Path: path}
	}
	return path, nil
}
