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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocations(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()
	_, err := s.CreateResource(ctx, ResourceCreate{
		Name: "st11_1", Dtype: "wav", Locations: []string{"local"},
	}, alice)
	require.NoError(t, err)

	loc, err := s.Location(ctx, "st11_1", "local")
	assert.NoError(t, err)
	assert.Equal(t, "st11_1", loc.ResourceName)
	assert.Equal(t, "/home/data/archive", loc.Archive.Root)

	_, err = s.Location(ctx, "st11_1", "offsite")
	assert.Equal(t, NotFoundError{Kind: "location", Name: "st11_1@offsite"}, err)

	loc, err = s.AddLocation(ctx, "st11_1", "offsite")
	assert.NoError(t, err)
	assert.Equal(t, "offsite", loc.Archive.Name)
	assert.NotZero(t, loc.Id)

	_, err = s.AddLocation(ctx, "st11_1", "offsite")
	assert.Equal(t, AlreadyExistsError{Kind: "location", Field: "resource and archive"}, err)
	_, err = s.AddLocation(ctx, "st11_1", "nowhere")
	assert.Equal(t, NotFoundError{Kind: "archive", Name: "nowhere"}, err)
	_, err = s.AddLocation(ctx, "st11_9", "local")
	assert.Equal(t, NotFoundError{Kind: "resource", Name: "st11_9"}, err)

	r, err := s.Resource(ctx, "st11_1")
	require.NoError(t, err)
	require.Len(t, r.Locations, 2)
	assert.Equal(t, "local", r.Locations[0].Archive.Name)
	assert.Equal(t, "offsite", r.Locations[1].Archive.Name)
}

func TestDeleteLocation(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()
	_, err := s.CreateResource(ctx, ResourceCreate{
		Name: "st11_1", Dtype: "wav", Locations: []string{"local", "offsite"},
	}, alice)
	require.NoError(t, err)

	err = s.DeleteLocation(ctx, "st11_1", "local", bob)
	assert.IsType(t, PermissionDeniedError{}, err)
	assert.NoError(t, s.DeleteLocation(ctx, "st11_1", "local", alice))
	assert.NoError(t, s.DeleteLocation(ctx, "st11_1", "offsite", root))

	err = s.DeleteLocation(ctx, "st11_1", "local", alice)
	assert.Equal(t, NotFoundError{Kind: "location", Name: "st11_1@local"}, err)

	// the resource itself remains
	r, err := s.Resource(ctx, "st11_1")
	assert.NoError(t, err)
	assert.Empty(t, r.Locations)
}

func TestLocationOrder(t *testing.T) {
	s := newPopulatedStore(t)
	ctx := context.Background()
	_, err := s.CreateResource(ctx, ResourceCreate{
		Name: "st11_1", Dtype: "wav", Locations: []string{"offsite", "local"},
	}, alice)
	require.NoError(t, err)
	_, err = s.CreateResource(ctx, ResourceCreate{
		Name: "st11_2", Dtype: "wav", Locations: []string{"local"},
	}, alice)
	require.NoError(t, err)

	r, err := s.Resource(ctx, "st11_1")
	require.NoError(t, err)
	require.Len(t, r.Locations, 2)
	assert.Equal(t, "offsite", r.Locations[0].Archive.Name)
	assert.Equal(t, "local", r.Locations[1].Archive.Name)

	resources, err := s.ResourcesByName(ctx, []string{"st11_2", "st11_9", "st11_1"})
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "st11_2", resources[0].Name)
	assert.Equal(t, "st11_1", resources[1].Name)
	assert.Equal(t, "offsite", resources[1].Locations[0].Archive.Name)
}
