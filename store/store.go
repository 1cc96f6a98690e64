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

// This package persists the registry's resources, datatypes, archives,
// locations, and users in a SQLite database.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/melizalab/nbank-registry/config"
)

// layout of stored timestamps (always UTC)
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Options for opening a Store.
type Options struct {
	// path to the database file
	Path string
	// number of pooled connections
	PoolSize int
	// length of generated resource names
	AutoIdLength int
	// lifetime of cached datatype lookups
	CacheExpiration time.Duration
}

// A user acting on the registry.
type Actor struct {
	Name      string
	Superuser bool
}

// A Store is the registry database. It is safe for concurrent use.
type Store struct {
	pool         *pool
	dtypes       *cache.Cache
	autoIdLength int
}

// Opens (creating if needed) the database described by the given options.
func Open(opts Options) (*Store, error) {
	p, err := openPool(poolConfig{Path: opts.Path, PoolSize: opts.PoolSize})
	if err != nil {
		return nil, err
	}
	s := &Store{
		pool:         p,
		dtypes:       cache.New(opts.CacheExpiration, 2*opts.CacheExpiration),
		autoIdLength: opts.AutoIdLength,
	}
	if s.autoIdLength <= 0 {
		s.autoIdLength = 8
	}
	err = s.withConn(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, schema, nil)
	})
	if err != nil {
		p.close()
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}
	return s, nil
}

// Opens the database named in the registry configuration.
func OpenFromConfig() (*Store, error) {
	return Open(Options{
		Path:            config.Database.Path,
		PoolSize:        config.Database.PoolSize,
		AutoIdLength:    config.Registry.AutoIdLength,
		CacheExpiration: config.Registry.CacheExpiration,
	})
}

// Closes all database connections.
func (s *Store) Close() error {
	s.dtypes.Flush()
	return s.pool.close()
}

// runs fn with a pooled connection
func (s *Store) withConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.put(conn)
	return fn(conn)
}

// runs fn inside an immediate transaction that is rolled back if fn fails
func (s *Store) withTransaction(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer endTransaction(&err)
	return fn(conn)
}

// returns the integer value of the first column of the first row the
// query produces, and whether there was such a row
func queryInt64(conn *sqlite.Conn, query string, args ...any) (int64, bool, error) {
	var value int64
	found := false
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if !found {
				value = stmt.ColumnInt64(0)
				found = true
			}
			return nil
		},
	})
	return value, found, err
}

// Returns true if the error reports a violated UNIQUE constraint on the
// given column (e.g. "resources.sha1").
func isUniqueViolation(err error, column string) bool {
	return sqlite.ErrCode(err) == sqlite.ResultConstraintUnique &&
		strings.Contains(err.Error(), column)
}

// Returns a comma-separated list of n placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// escapes LIKE wildcards so that s matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Returns a LIKE pattern matching values containing s.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Returns a LIKE pattern matching values beginning with s.
func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
