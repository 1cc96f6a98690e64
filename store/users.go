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
)

// returns the id of the named user, adding the user if needed
func ensureUser(conn *sqlite.Conn, name string) (int64, error) {
	err := sqlitex.Execute(conn,
		`INSERT INTO users (name) VALUES (?) ON CONFLICT (name) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{name}})
	if err != nil {
		return 0, err
	}
	id, _, err := queryInt64(conn, `SELECT id FROM users WHERE name = ?`, name)
	return id, err
}

// Records a user, returning its id. Users are added automatically when they
// first register a resource.
func (s *Store) EnsureUser(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		var err error
		id, err = ensureUser(conn, name)
		return err
	})
	return id, err
}

// Removes a user along with every resource the user registered.
func (s *Store) DeleteUser(ctx context.Context, name string) error {
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `DELETE FROM users WHERE name = ?`,
			&sqlitex.ExecOptions{Args: []any{name}})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return NotFoundError{Kind: "user", Name: name}
		}
		return nil
	})
}
