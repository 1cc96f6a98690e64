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

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/melizalab/nbank-registry/core"
)

func locationIn(resource core.Resource, archive string) (core.Location, bool) {
	for _, loc := range resource.Locations {
		if loc.Archive.Name == archive {
			return loc, true
		}
	}
	return core.Location{}, false
}

// Returns the location of the named resource in the named archive.
func (s *Store) Location(ctx context.Context, resource, archive string) (core.Location, error) {
	var location core.Location
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		r, err := lookupResource(conn, resource)
		if err != nil {
			return err
		}
		loc, found := locationIn(r, archive)
		if !found {
			return NotFoundError{Kind: "location", Name: resource + "@" + archive}
		}
		location = loc
		return nil
	})
	return location, err
}

// Records that the named resource is stored in the named archive.
func (s *Store) AddLocation(ctx context.Context, resource, archive string) (core.Location, error) {
	var location core.Location
	err := s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		r, err := lookupResource(conn, resource)
		if err != nil {
			return err
		}
		if err := insertLocation(conn, r.Id, archive); err != nil {
			return err
		}
		if r, err = lookupResource(conn, resource); err != nil {
			return err
		}
		location, _ = locationIn(r, archive)
		return nil
	})
	return location, err
}

// Removes the location of the named resource in the named archive. Only
// the user who registered the resource or a superuser may do so.
func (s *Store) DeleteLocation(ctx context.Context, resource, archive string, actor Actor) error {
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		r, err := lookupResource(conn, resource)
		if err != nil {
			return err
		}
		loc, found := locationIn(r, archive)
		if !found {
			return NotFoundError{Kind: "location", Name: resource + "@" + archive}
		}
		if err := checkOwner(r, actor, "delete locations of resource '"+resource+"'"); err != nil {
			return err
		}
		return sqlitex.Execute(conn, `DELETE FROM locations WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{loc.Id}})
	})
}
