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

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melizalab/nbank-registry/core"
)

func TestCreateDataType(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()

	dtypes, err := s.ListDataTypes(ctx)
	require.NoError(t, err)
	require.Len(t, dtypes, 2)
	assert.Equal(t, "acq-dir", dtypes[0].Name)
	assert.Equal(t, core.DataType{
		Name: "wav", ContentType: "audio/wav", Downloadable: true, Extension: ".wav",
	}, dtypes[1])

	err = s.CreateDataType(ctx, core.DataType{Name: "wav"})
	assert.Equal(t, AlreadyExistsError{Kind: "datatype", Field: "name"}, err)

	err = s.CreateDataType(ctx, core.DataType{Name: "not a slug"})
	assert.Equal(t, ValidationError{Field: "name", Message: core.SlugMessage}, err)

	err = s.CreateDataType(ctx, core.DataType{})
	assert.Equal(t, ValidationError{Field: "name", Message: "this field is required"}, err)
}

func TestDataTypeLookup(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()

	dtype, err := s.DataType(ctx, "wav")
	assert.NoError(t, err)
	assert.True(t, dtype.Downloadable)

	// a second lookup is served from the cache
	_, found := s.dtypes.Get("wav")
	assert.True(t, found)
	dtype, err = s.DataType(ctx, "wav")
	assert.NoError(t, err)
	assert.Equal(t, "audio/wav", dtype.ContentType)

	_, err = s.DataType(ctx, "mp3")
	assert.Equal(t, NotFoundError{Kind: "dtype", Name: "mp3"}, err)
}

func TestDeleteDataType(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()

	_, err := s.CreateResource(ctx, ResourceCreate{Name: "st11_1", Dtype: "wav"}, alice)
	require.NoError(t, err)

	err = s.DeleteDataType(ctx, "wav")
	var protected ProtectedError
	assert.ErrorAs(t, err, &protected)
	assert.Equal(t, "wav", protected.Name)

	assert.NoError(t, s.DeleteDataType(ctx, "acq-dir"))
	_, found := s.dtypes.Get("acq-dir")
	assert.False(t, found)
	_, err = s.DataType(ctx, "acq-dir")
	assert.Equal(t, NotFoundError{Kind: "dtype", Name: "acq-dir"}, err)

	err = s.DeleteDataType(ctx, "acq-dir")
	assert.Equal(t, NotFoundError{Kind: "dtype", Name: "acq-dir"}, err)
}

// two stores sharing a database behave like the server and a CLI process
func TestDataTypeDeletedElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	open := func() *Store {
		s, err := Open(Options{Path: path, PoolSize: 2, CacheExpiration: time.Hour})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	}
	server, admin := open(), open()
	ctx := context.Background()
	require.NoError(t, server.CreateDataType(ctx, core.DataType{Name: "wav", Extension: "wav"}))
	require.NoError(t, server.CreateDataType(ctx, core.DataType{Name: "acq-dir"}))
	_, err := server.DataType(ctx, "acq-dir")
	require.NoError(t, err)

	// the new datatype takes over the deleted row id
	require.NoError(t, admin.DeleteDataType(ctx, "acq-dir"))
	require.NoError(t, admin.CreateDataType(ctx, core.DataType{Name: "dat", Extension: "dat"}))

	_, err = server.CreateResource(ctx, ResourceCreate{Name: "st11_1", Dtype: "acq-dir"}, alice)
	assert.Equal(t, NotFoundError{Kind: "dtype", Name: "acq-dir"}, err)
	_, found := server.dtypes.Get("acq-dir")
	assert.False(t, found)

	created, err := server.CreateResource(ctx, ResourceCreate{Name: "st11_2", Dtype: "wav"}, alice)
	require.NoError(t, err)
	dtype := "dat"
	updated, err := server.UpdateResource(ctx, created.Name, ResourcePatch{Dtype: &dtype}, alice)
	require.NoError(t, err)
	assert.Equal(t, "dat", updated.Dtype.Name)
	r, err := admin.Resource(ctx, "st11_2")
	require.NoError(t, err)
	assert.Equal(t, "dat", r.Dtype.Name)
}
