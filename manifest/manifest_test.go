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
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/nbtest"
	"github.com/melizalab/nbank-registry/resolver"
	"github.com/melizalab/nbank-registry/store"
)

const archiveRoot = "/data/archive"

const testSha1 = "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"

// creates a registry with one neurobank archive holding a file resource,
// a directory resource, and a resource whose file has gone missing
func newTestRegistry(t *testing.T) (*store.Store, *resolver.Resolver) {
	db, err := store.Open(store.Options{
		Path:            filepath.Join(t.TempDir(), "registry.db"),
		PoolSize:        2,
		CacheExpiration: time.Minute,
	})
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.Nil(t, db.CreateDataType(ctx, core.DataType{
		Name: "wav-file", ContentType: "audio/wav", Downloadable: true, Extension: "wav"}))
	require.Nil(t, db.CreateDataType(ctx, core.DataType{Name: "acq-dir"}))
	require.Nil(t, db.CreateArchive(ctx, core.Archive{
		Name: "Local", Scheme: core.NeurobankScheme, Root: archiveRoot}))
	require.Nil(t, db.CreateArchive(ctx, core.Archive{
		Name: "offsite", Scheme: "https", Root: "https://example.com/data"}))

	fsys := afero.NewMemMapFs()
	require.Nil(t, nbtest.CreateArchive(fsys, archiveRoot))
	_, err = nbtest.AddResourceFile(fsys, archiveRoot, "st11_1", "wav", []byte("RIFF"))
	require.Nil(t, err)
	_, err = nbtest.AddResourceDir(fsys, archiveRoot, "acq_1")
	require.Nil(t, err)

	for _, req := range []store.ResourceCreate{
		{Name: "st11_1", Sha1: testSha1, Dtype: "wav-file", Locations: []string{"Local"}},
		{Name: "acq_1", Dtype: "acq-dir", Locations: []string{"Local"}},
		{Name: "lost_1", Dtype: "wav-file", Locations: []string{"Local"}},
		{Name: "away_1", Dtype: "wav-file", Locations: []string{"offsite"}},
	} {
		_, err := db.CreateResource(ctx, req, store.Actor{Name: "dmeliza"})
		require.Nil(t, err)
	}
	return db, resolver.New(fsys)
}

func TestForArchive(t *testing.T) {
	assert := assert.New(t)
	db, res := newTestRegistry(t)

	pkg, err := ForArchive(context.Background(), db, res, "Local")
	require.Nil(t, err)
	assert.Equal([]string{"st11_1"}, pkg.ResourceNames())

	descriptor := pkg.Descriptor()
	assert.Equal("local", descriptor["name"])
	assert.Equal("data-package", descriptor["profile"])

	resource := pkg.GetResource("st11_1").Descriptor()
	assert.Equal("resources/st/st11_1.wav", resource["path"])
	assert.Equal("sha1:"+testSha1, resource["hash"])
	assert.Equal("audio/wav", resource["mediatype"])
	assert.Equal("wav", resource["format"])
	assert.EqualValues(4, resource["bytes"])
}

func TestForArchiveRejectsOtherSchemes(t *testing.T) {
	assert := assert.New(t)
	db, res := newTestRegistry(t)

	_, err := ForArchive(context.Background(), db, res, "offsite")
	assert.True(errors.Is(err, resolver.ErrNotAvailableForDownload))
	var unsupported resolver.SchemeNotSupportedError
	assert.True(errors.As(err, &unsupported))
	assert.Equal("https", unsupported.Scheme)

	_, err = ForArchive(context.Background(), db, res, "nowhere")
	var notFound store.NotFoundError
	assert.True(errors.As(err, &notFound))
}

func TestSaveAndLoad(t *testing.T) {
	assert := assert.New(t)
	db, res := newTestRegistry(t)

	pkg, err := ForArchive(context.Background(), db, res, "Local")
	require.Nil(t, err)
	path := filepath.Join(t.TempDir(), "datapackage.json")
	assert.Nil(Save(pkg, path))

	loaded, err := Load(path)
	assert.Nil(err)
	assert.Equal(pkg.ResourceNames(), loaded.ResourceNames())
}

func TestHashAlgorithm(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("sha1", DataResource{Hash: "sha1:" + testSha1}.HashAlgorithm())
	assert.Equal("md5", DataResource{Hash: "d41d8cd98f00b204e9800998ecf8427e"}.HashAlgorithm())
}
