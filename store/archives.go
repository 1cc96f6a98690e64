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

// Criteria for listing archives. Empty fields match everything.
type ArchiveFilter struct {
	// case-insensitive prefix of the name
	Name string
	// case-insensitive prefix of the scheme
	Scheme string
	// root, compared case-insensitively
	Root string
}

// Changes to an archive. Nil fields are left alone.
type ArchivePatch struct {
	Name   *string
	Scheme *string
	Root   *string
}

const archiveColumns = `id, name, scheme, root`

func scanArchive(stmt *sqlite.Stmt) (int64, core.Archive) {
	return stmt.ColumnInt64(0), core.Archive{
		Name:   stmt.ColumnText(1),
		Scheme: stmt.ColumnText(2),
		Root:   stmt.ColumnText(3),
	}
}

func lookupArchive(conn *sqlite.Conn, name string) (int64, core.Archive, error) {
	var id int64
	var archive core.Archive
	found := false
	err := sqlitex.Execute(conn,
		`SELECT `+archiveColumns+` FROM archives WHERE name = ?`,
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id, archive = scanArchive(stmt)
				found = true
				return nil
			},
		})
	if err == nil && !found {
		err = NotFoundError{Kind: "archive", Name: name}
	}
	return id, archive, err
}

// maps constraint violations on the archives table to AlreadyExistsErrors
func archiveConstraintError(err error) error {
	switch {
	case isUniqueViolation(err, "archives.name"):
		return AlreadyExistsError{Kind: "archive", Field: "name"}
	case isUniqueViolation(err, "archives.scheme"):
		return AlreadyExistsError{Kind: "archive", Field: "scheme and root"}
	}
	return err
}

// Returns the archives passing the filter, ordered by name.
func (s *Store) ListArchives(ctx context.Context, filter ArchiveFilter) ([]core.Archive, error) {
	var where whereClause
	if filter.Name != "" {
		where.add(`lower(name) LIKE lower(?) ESCAPE '\'`, prefixPattern(filter.Name))
	}
	if filter.Scheme != "" {
		where.add(`lower(scheme) LIKE lower(?) ESCAPE '\'`, prefixPattern(filter.Scheme))
	}
	if filter.Root != "" {
		where.add(`lower(root) = lower(?)`, filter.Root)
	}

	archives := make([]core.Archive, 0)
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+archiveColumns+` FROM archives`+where.sql()+` ORDER BY name`,
			&sqlitex.ExecOptions{
				Args: where.args,
				ResultFunc: func(stmt *sqlite.Stmt) error {
					_, archive := scanArchive(stmt)
					archives = append(archives, archive)
					return nil
				},
			})
	})
	return archives, err
}

// Returns the named archive.
func (s *Store) Archive(ctx context.Context, name string) (core.Archive, error) {
	var archive core.Archive
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		var err error
		_, archive, err = lookupArchive(conn, name)
		return err
	})
	return archive, err
}

// Adds an archive. The name and the (scheme, root) pair must be unused.
func (s *Store) CreateArchive(ctx context.Context, archive core.Archive) error {
	if archive.Name == core.RegistryArchiveName {
		return ValidationError{Field: "name", Message: "this name is reserved"}
	}
	if err := validationError(core.ValidateStruct(archive)); err != nil {
		return err
	}
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO archives (name, scheme, root) VALUES (?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{archive.Name, archive.Scheme, archive.Root}})
		return archiveConstraintError(err)
	})
}

// Changes the named archive, returning its new state.
func (s *Store) UpdateArchive(ctx context.Context, name string, patch ArchivePatch) (core.Archive, error) {
	var archive core.Archive
	err := s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		id, current, err := lookupArchive(conn, name)
		if err != nil {
			return err
		}
		archive = current
		if patch.Name != nil {
			archive.Name = *patch.Name
		}
		if patch.Scheme != nil {
			archive.Scheme = *patch.Scheme
		}
		if patch.Root != nil {
			archive.Root = *patch.Root
		}
		if archive.Name == core.RegistryArchiveName {
			return ValidationError{Field: "name", Message: "this name is reserved"}
		}
		if err := validationError(core.ValidateStruct(archive)); err != nil {
			return err
		}
		err = sqlitex.Execute(conn,
			`UPDATE archives SET name = ?, scheme = ?, root = ? WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{archive.Name, archive.Scheme, archive.Root, id}})
		return archiveConstraintError(err)
	})
	return archive, err
}
