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
	"github.com/melizalab/nbank-registry/core"
)

// Information about the inbound request needed to describe the registry's
// own download endpoint.
type RequestInfo struct {
	// scheme of the inbound request ("http" or "https")
	Scheme string
	// absolute URL of the registry's download endpoint, without any
	// resource name
	DownloadBase string
}

// Returns the synthetic location representing a download from the registry
// itself. It is never stored.
func RegistryLocation(resource core.Resource, req RequestInfo) core.LocationView {
	return core.LocationView{
		ArchiveName:  core.RegistryArchiveName,
		Scheme:       req.Scheme,
		Root:         req.DownloadBase,
		ResourceName: resource.Name,
	}
}

// Returns the resource's stored locations that pass the filter, in order.
// Without a filter, a downloadable resource also gets the registry location
// appended. No resolution is attempted, so the registry entry says only that
// the datatype may be downloaded.
func ListLocations(resource core.Resource, req RequestInfo, filter core.LocationFilter) []core.LocationView {
	views := make([]core.LocationView, 0, len(resource.Locations)+1)
	for _, loc := range resource.Locations {
		if filter.Matches(loc) {
			views = append(views, loc.View())
		}
	}
	if !filter.IsSet() && IsDownloadable(resource) {
		views = append(views, RegistryLocation(resource, req))
	}
	return views
}
