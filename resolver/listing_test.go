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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/melizalab/nbank-registry/core"
)

var request = RequestInfo{
	Scheme:       "https",
	DownloadBase: "https://gracula.example.org/neurobank/download/",
}

var remote = core.Archive{Name: "remote", Scheme: "http", Root: "https://example.org/data/"}

func TestListLocationsAppendsRegistry(t *testing.T) {
	resource := resourceIn("xyzzy", wav, neurobankArchive("local", "/arc"), remote)
	views := ListLocations(resource, request, core.LocationFilter{})
	assert.Equal(t, []core.LocationView{
		{ArchiveName: "local", Scheme: "neurobank", Root: "/arc", ResourceName: "xyzzy"},
		{ArchiveName: "remote", Scheme: "http", Root: "https://example.org/data/", ResourceName: "xyzzy"},
		{ArchiveName: "registry", Scheme: "https", Root: "https://gracula.example.org/neurobank/download/", ResourceName: "xyzzy"},
	}, views)
}

func TestListLocationsNotDownloadable(t *testing.T) {
	resource := resourceIn("xyzzy", acqdir, neurobankArchive("local", "/arc"))
	views := ListLocations(resource, request, core.LocationFilter{})
	assert.Equal(t, []core.LocationView{
		{ArchiveName: "local", Scheme: "neurobank", Root: "/arc", ResourceName: "xyzzy"},
	}, views)
}

func TestListLocationsFilteredByArchive(t *testing.T) {
	resource := resourceIn("xyzzy", wav, neurobankArchive("local", "/arc"), remote)
	views := ListLocations(resource, request, core.LocationFilter{Archive: "loc"})
	assert.Equal(t, []core.LocationView{
		{ArchiveName: "local", Scheme: "neurobank", Root: "/arc", ResourceName: "xyzzy"},
	}, views)
}

func TestListLocationsFilteredByScheme(t *testing.T) {
	resource := resourceIn("xyzzy", wav, neurobankArchive("local", "/arc"), remote)
	views := ListLocations(resource, request, core.LocationFilter{Scheme: "HTTP"})
	assert.Equal(t, []core.LocationView{
		{ArchiveName: "remote", Scheme: "http", Root: "https://example.org/data/", ResourceName: "xyzzy"},
	}, views)
}

func TestListLocationsFilterMatchingNothing(t *testing.T) {
	resource := resourceIn("xyzzy", wav, neurobankArchive("local", "/arc"))
	views := ListLocations(resource, request, core.LocationFilter{Archive: "registry"})
	assert.Empty(t, views)
}

func TestListLocationsNeverResolves(t *testing.T) {
	// no filesystem is involved, so a resource with no stored file still
	// lists the registry as a location
	resource := resourceIn("xyzzy", wav)
	views := ListLocations(resource, request, core.LocationFilter{})
	assert.Equal(t, []core.LocationView{RegistryLocation(resource, request)}, views)
}
