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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/melizalab/nbank-registry/core"
)

// a filesystem that counts the probes made through it
type countingFs struct {
	afero.Fs
	probes int
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.probes++
	return c.Fs.Stat(name)
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.probes++
	return c.Fs.Open(name)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.probes++
	return c.Fs.OpenFile(name, flag, perm)
}

var wav = core.DataType{Name: "wav", ContentType: "audio/wav", Downloadable: true, Extension: "wav"}
var acqdir = core.DataType{Name: "acqdir", ContentType: "application/x-directory", Downloadable: false}

func neurobankArchive(name, root string) core.Archive {
	return core.Archive{Name: name, Scheme: core.NeurobankScheme, Root: root}
}

func resourceIn(name string, dtype core.DataType, archives ...core.Archive) core.Resource {
	r := core.Resource{Name: name, Dtype: dtype}
	for i, archive := range archives {
		r.Locations = append(r.Locations, core.Location{
			Id:           int64(i + 1),
			ResourceName: name,
			Archive:      archive,
		})
	}
	return r
}

func TestNonDownloadableNeverProbes(t *testing.T) {
	assert := assert.New(t)
	fsys := &countingFs{Fs: shardFs(t, "xyzzy.wav", "xyzzy")}
	r := New(fsys)

	resource := resourceIn("xyzzy", acqdir, neurobankArchive("local", "/arc"))
	_, err := r.ResolveToPath(resource)
	assert.Equal(NonDownloadableDtypeError{Resource: "xyzzy", Dtype: "acqdir"}, err)
	assert.Equal(0, fsys.probes)

	// the same file resolves once the dtype allows it
	resource.Dtype = wav
	path, err := r.ResolveToPath(resource)
	assert.Nil(err)
	assert.Equal("/arc/resources/xy/xyzzy", path)
	assert.Greater(fsys.probes, 0)
}

func TestUnsupportedSchemeOnly(t *testing.T) {
	assert := assert.New(t)
	r := New(afero.NewMemMapFs())
	resource := resourceIn("xyzzy", wav,
		core.Archive{Name: "remote", Scheme: "http", Root: "https://example.org/data/"})

	_, err := r.ResolveToPath(resource)
	var schemeErr SchemeNotSupportedError
	assert.True(errors.As(err, &schemeErr))
	assert.Equal("xyzzy", schemeErr.Resource)
	assert.Len(schemeErr.Attempts, 1)
	assert.Equal("http", schemeErr.Attempts[0].Scheme)
}

func TestNoLocations(t *testing.T) {
	r := New(afero.NewMemMapFs())
	_, err := r.ResolveToPath(resourceIn("xyzzy", wav))
	assert.Equal(t, SchemeNotSupportedError{Resource: "xyzzy", Attempts: []LocationError{}}, err)
}

func TestDirectoryIsNotAFile(t *testing.T) {
	assert := assert.New(t)
	fsys := shardFs(t)
	assert.Nil(fsys.Mkdir("/arc/resources/xy/xyzzy", 0755))
	r := New(fsys)

	_, err := r.ResolveToPath(resourceIn("xyzzy", wav, neurobankArchive("local", "/arc")))
	var notAFile NotAFileError
	assert.True(errors.As(err, &notAFile))
	assert.Equal(NotAFileError{Resource: "xyzzy", Path: "/arc/resources/xy/xyzzy"}, notAFile)

	// the aggregate failure is still reported as an unsupported scheme
	var schemeErr SchemeNotSupportedError
	assert.True(errors.As(err, &schemeErr))
	assert.Equal(SchemeNotSupportedError{}.Error(), err.Error())
}

func TestFallsBackToLaterLocation(t *testing.T) {
	assert := assert.New(t)
	r := New(shardFs(t, "xyzzy.wav"))
	resource := resourceIn("xyzzy", wav,
		core.Archive{Name: "remote", Scheme: "http", Root: "https://example.org/data/"},
		neurobankArchive("local", "/arc"))

	path, err := r.ResolveToPath(resource)
	assert.Nil(err)
	assert.Equal("/arc/resources/xy/xyzzy.wav", path)
}

func TestFirstResolvableLocationWins(t *testing.T) {
	assert := assert.New(t)
	fsys := shardFs(t)
	assert.Nil(fsys.MkdirAll("/one/resources/xy", 0755))
	assert.Nil(afero.WriteFile(fsys, "/one/resources/xy/xyzzy.wav", []byte("1"), 0644))
	assert.Nil(fsys.MkdirAll("/two/resources/xy", 0755))
	assert.Nil(afero.WriteFile(fsys, "/two/resources/xy/xyzzy.wav", []byte("2"), 0644))
	r := New(fsys)

	resource := resourceIn("xyzzy", wav,
		neurobankArchive("missing", "/arc"),
		neurobankArchive("one", "/one"),
		neurobankArchive("two", "/two"))
	path, err := r.ResolveToPath(resource)
	assert.Nil(err)
	assert.Equal("/one/resources/xy/xyzzy.wav", path)
}

func TestRegisteredStrategy(t *testing.T) {
	assert := assert.New(t)
	r := New(afero.NewMemMapFs())
	assert.False(r.Supports("mirror"))
	r.Register("mirror", func(fsys afero.Fs, archive core.Archive, name string) (string, error) {
		return filepath.Join(archive.Root, name), nil
	})
	assert.True(r.Supports("mirror"))

	path, err := r.ResolveToPath(resourceIn("xyzzy", wav,
		core.Archive{Name: "m", Scheme: "mirror", Root: "/mirror"}))
	assert.Nil(err)
	assert.Equal("/mirror/xyzzy", path)
}

func TestResolveInIgnoresDtype(t *testing.T) {
	r := New(shardFs(t, "xyzzy.wav"))
	path, err := r.ResolveIn(neurobankArchive("local", "/arc"), "xyzzy")
	assert.Nil(t, err)
	assert.Equal(t, "/arc/resources/xy/xyzzy.wav", path)
}

// archive root with a resource file ab12cd34.bin in its ab shard
func TestResolveEndToEnd(t *testing.T) {
	assert := assert.New(t)
	root := filepath.Join(t.TempDir(), "arc")
	shard := filepath.Join(root, "resources", "ab")
	assert.Nil(os.MkdirAll(shard, 0755))
	assert.Nil(os.WriteFile(filepath.Join(shard, "ab12cd34.bin"), []byte("data"), 0644))

	dtype := core.DataType{Name: "bin", ContentType: "application/octet-stream", Downloadable: true}
	resource := resourceIn("ab12cd34", dtype, neurobankArchive("arc", root))
	path, err := NewOsResolver().ResolveToPath(resource)
	assert.Nil(err)
	assert.Equal(filepath.Join(root, "resources", "ab", "ab12cd34.bin"), path)
}

// same layout with nothing written to the shard directory
func TestResolveEndToEndMissingFile(t *testing.T) {
	assert := assert.New(t)
	root := filepath.Join(t.TempDir(), "arc")
	shard := filepath.Join(root, "resources", "ab")
	assert.Nil(os.MkdirAll(shard, 0755))

	dtype := core.DataType{Name: "bin", ContentType: "application/octet-stream", Downloadable: true}
	resource := resourceIn("ab12cd34", dtype, neurobankArchive("arc", root))
	_, err := NewOsResolver().ResolveToPath(resource)
	var missing MissingFileError
	assert.True(errors.As(err, &missing))
	assert.Equal(MissingFileError{Resource: "ab12cd34", Directory: shard}, missing)
}
