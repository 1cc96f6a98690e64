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

// This package describes the content of a neurobank archive as a
// Frictionless data package, so that an archive can be copied or published
// along with a machine-readable list of its files.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"

	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/resolver"
	"github.com/melizalab/nbank-registry/store"
)

// Builds a validated data package listing every resource located in the
// named neurobank archive whose content resolves to a file there. Paths are
// relative to the archive root.
func ForArchive(ctx context.Context, db *store.Store, res *resolver.Resolver,
	archiveName string) (*datapackage.Package, error) {

	archive, err := db.Archive(ctx, archiveName)
	if err != nil {
		return nil, err
	}
	if archive.Scheme != core.NeurobankScheme {
		return nil, resolver.SchemeNotSupportedError{Scheme: archive.Scheme}
	}
	resources, err := db.ResourcesInArchive(ctx, archive.Name)
	if err != nil {
		return nil, err
	}

	pkg := DataPackage{
		Name:        strings.ToLower(archive.Name),
		Title:       fmt.Sprintf("neurobank archive %s", archive.Name),
		Description: fmt.Sprintf("Resources stored under %s", archive.Root),
		Created:     time.Now().Format(time.RFC3339),
		Profile:     "data-package",
		Keywords:    []string{"neurobank", "manifest"},
		Resources:   make([]DataResource, 0, len(resources)),
	}
	var authors []string
	for _, resource := range resources {
		dataResource, err := describe(res, archive, resource)
		if err != nil {
			if errors.Is(err, resolver.ErrNotAvailableForDownload) {
				slog.Debug(fmt.Sprintf("Leaving %s out of manifest: %s", resource.Name, err))
				continue
			}
			return nil, err
		}
		pkg.Resources = append(pkg.Resources, dataResource)
		if !slices.Contains(authors, resource.CreatedBy) {
			authors = append(authors, resource.CreatedBy)
		}
	}
	slices.Sort(authors)
	for _, author := range authors {
		pkg.Contributors = append(pkg.Contributors, Contributor{Title: author, Role: "author"})
	}
	slog.Info(fmt.Sprintf("Archive %s manifest lists %d of %d resources",
		archive.Name, len(pkg.Resources), len(resources)))

	descriptor, err := pkg.descriptor()
	if err != nil {
		return nil, err
	}
	return datapackage.New(descriptor, archive.Root, validator.InMemoryLoader())
}

// describes the file holding a resource in the given archive
func describe(res *resolver.Resolver, archive core.Archive, resource core.Resource) (DataResource, error) {
	path, err := res.ResolveIn(archive, resource.Name)
	if err != nil {
		return DataResource{}, err
	}
	info, err := res.Fs().Stat(path)
	if err != nil {
		return DataResource{}, err
	}
	rel, err := filepath.Rel(archive.Root, path)
	if err != nil {
		return DataResource{}, err
	}
	dataResource := DataResource{
		Name:      strings.ToLower(resource.Name),
		Path:      filepath.ToSlash(rel),
		Title:     resource.Dtype.Name,
		MediaType: resource.Dtype.ContentType,
		Format:    strings.TrimPrefix(filepath.Ext(path), "."),
		Bytes:     info.Size(),
	}
	if resource.Sha1 != "" {
		dataResource.Hash = "sha1:" + resource.Sha1
	}
	return dataResource, nil
}

// Writes the package's descriptor to the given file.
func Save(pkg *datapackage.Package, path string) error {
	return pkg.SaveDescriptor(path)
}

// Reads and validates a package descriptor written by Save.
func Load(path string) (*datapackage.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return datapackage.FromString(string(data), filepath.Dir(path), validator.InMemoryLoader())
}
