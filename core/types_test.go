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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameAppendsExtension(t *testing.T) {
	r := Resource{Name: "abc", Dtype: DataType{Name: "wave", Extension: "wav"}}
	assert.Equal(t, "abc.wav", r.Filename())
}

func TestFilenameKeepsExistingExtension(t *testing.T) {
	r := Resource{Name: "abc.rst", Dtype: DataType{Name: "text", Extension: "rst"}}
	assert.Equal(t, "abc.rst", r.Filename())
}

func TestFilenameWithoutExtension(t *testing.T) {
	r := Resource{Name: "abc", Dtype: DataType{Name: "blob", Extension: ""}}
	assert.Equal(t, "abc", r.Filename())
}

func TestFilenameStripsLeadingDot(t *testing.T) {
	r := Resource{Name: "qqr", Dtype: DataType{Name: "arf", Extension: ".arf"}}
	assert.Equal(t, "qqr.arf", r.Filename())
}

func TestLocationView(t *testing.T) {
	loc := Location{
		Id:           3,
		ResourceName: "ab12cd34",
		Archive:      Archive{Name: "local", Scheme: NeurobankScheme, Root: "/tmp/arc"},
	}
	assert.Equal(t, LocationView{
		ArchiveName:  "local",
		Scheme:       "neurobank",
		Root:         "/tmp/arc",
		ResourceName: "ab12cd34",
	}, loc.View())
}

func TestLocationFilter(t *testing.T) {
	assert := assert.New(t)
	loc := Location{
		ResourceName: "ab12cd34",
		Archive:      Archive{Name: "Meliza-Lab", Scheme: "neurobank", Root: "/tmp/arc"},
	}
	assert.False(LocationFilter{}.IsSet())
	assert.True(LocationFilter{}.Matches(loc))
	assert.True(LocationFilter{Archive: "lab"}.Matches(loc))
	assert.True(LocationFilter{Archive: "MELIZA"}.Matches(loc))
	assert.False(LocationFilter{Archive: "other"}.Matches(loc))
	assert.True(LocationFilter{Scheme: "NEURO"}.Matches(loc))
	assert.False(LocationFilter{Scheme: "bank"}.Matches(loc))
	assert.False(LocationFilter{Archive: "lab", Scheme: "http"}.Matches(loc))
}
