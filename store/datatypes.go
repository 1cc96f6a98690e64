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

	"github.com/patrickmn/go-cache"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/melizalab/nbank-registry/core"
)

// a datatype together with its row id
type dtypeRecord struct {
	id    int64
	dtype core.DataType
}

const dtypeColumns = `id, name, content_type, downloadable, extension`

func scanDataType(stmt *sqlite.Stmt) dtypeRecord {
	return dtypeRecord{
		id: stmt.ColumnInt64(0),
		dtype: core.DataType{
			Name:         stmt.ColumnText(1),
			ContentType:  stmt.ColumnText(2),
			Downloadable: stmt.ColumnInt64(3) != 0,
			Extension:    stmt.ColumnText(4),
		},
	}
}

// looks up a datatype by name, consulting the cache first. Only reads may
// use the result: the cache is per process, so its row id can be stale.
func (s *Store) lookupDataType(conn *sqlite.Conn, name string) (dtypeRecord, error) {
	if cached, found := s.dtypes.Get(name); found {
		return cached.(dtypeRecord), nil
	}
	return s.queryDataType(conn, name)
}

// reads a datatype from the database and refreshes its cache entry. Writes
// that store a datatype's row id must use this.
func (s *Store) queryDataType(conn *sqlite.Conn, name string) (dtypeRecord, error) {
	var record dtypeRecord
	found := false
	err := sqlitex.Execute(conn,
		`SELECT `+dtypeColumns+` FROM datatypes WHERE name = ?`,
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				record = scanDataType(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return record, err
	}
	if !found {
		s.dtypes.Delete(name)
		return record, NotFoundError{Kind: "dtype", Name: name}
	}
	s.dtypes.Set(name, record, cache.DefaultExpiration)
	return record, nil
}

// Returns all datatypes ordered by name.
func (s *Store) ListDataTypes(ctx context.Context) ([]core.DataType, error) {
	dtypes := make([]core.DataType, 0)
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+dtypeColumns+` FROM datatypes ORDER BY name`,
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					dtypes = append(dtypes, scanDataType(stmt).dtype)
					return nil
				},
			})
	})
	return dtypes, err
}

// Returns the named datatype.
func (s *Store) DataType(ctx context.Context, name string) (core.DataType, error) {
	var record dtypeRecord
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		var err error
		record, err = s.lookupDataType(conn, name)
		return err
	})
	return record.dtype, err
}

// Adds a datatype.
func (s *Store) CreateDataType(ctx context.Context, dtype core.DataType) error {
	if err := validationError(core.ValidateStruct(dtype)); err != nil {
		return err
	}
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO datatypes (name, content_type, downloadable, extension) VALUES (?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{dtype.Name, dtype.ContentType, boolToInt(dtype.Downloadable), dtype.Extension},
			})
		if isUniqueViolation(err, "datatypes.name") {
			return AlreadyExistsError{Kind: "datatype", Field: "name"}
		}
		return err
	})
}

// Removes a datatype. Datatypes used by any resource are protected.
func (s *Store) DeleteDataType(ctx context.Context, name string) error {
	defer s.dtypes.Delete(name)
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		record, err := s.queryDataType(conn, name)
		if err != nil {
			return err
		}
		count, _, err := queryInt64(conn,
			`SELECT count(*) FROM resources WHERE dtype_id = ?`, record.id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ProtectedError{
				Kind:   "datatype",
				Name:   name,
				Reason: "it is used by one or more resources",
			}
		}
		return sqlitex.Execute(conn, `DELETE FROM datatypes WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{record.id}})
	})
}

// converts a core validation failure to a store ValidationError
func validationError(err error) error {
	if fieldErr, ok := err.(core.InvalidFieldError); ok {
		return ValidationError{Field: fieldErr.Field, Message: fieldErr.Message}
	}
	return err
}
