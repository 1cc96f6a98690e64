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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/melizalab/nbank-registry/core"
)

// number of attempts at generating an unused resource name
const maxNameAttempts = 5

// maximum number of ids bound in a single IN (...) clause
const maxBoundIds = 500

// A request to register a resource.
type ResourceCreate struct {
	// if empty, a random name is generated
	Name string
	Sha1 string
	// datatype name
	Dtype    string
	Metadata map[string]any
	// names of archives holding the resource
	Locations []string
}

// Changes to a resource. Nil fields are left alone.
type ResourcePatch struct {
	// names can't change; a different value is rejected
	Name *string
	// may be set once, then changed only by a superuser
	Sha1  *string
	Dtype *string
	// merged into the existing metadata; nil values remove keys
	Metadata map[string]any
	// archives to add to the resource's locations
	Locations []string
}

// A page of results (1-based). A Size of zero returns everything.
type Page struct {
	Number, Size int
}

// A page of resources together with the total number matching.
type ResourcePage struct {
	Resources []core.Resource
	Count     int
}

const resourceSelect = `SELECT r.id, r.name, r.sha1, r.metadata, r.created_on, u.name,
	d.name, d.content_type, d.downloadable, d.extension
FROM resources r
JOIN users u ON u.id = r.created_by_id
JOIN datatypes d ON d.id = r.dtype_id`

const resourceCount = `SELECT count(*)
FROM resources r
JOIN users u ON u.id = r.created_by_id
JOIN datatypes d ON d.id = r.dtype_id`

func scanResource(stmt *sqlite.Stmt) (core.Resource, error) {
	r := core.Resource{
		Id:        stmt.ColumnInt64(0),
		Name:      stmt.ColumnText(1),
		Sha1:      stmt.ColumnText(2),
		CreatedOn: parseTime(stmt.ColumnText(4)),
		CreatedBy: stmt.ColumnText(5),
		Dtype: core.DataType{
			Name:         stmt.ColumnText(6),
			ContentType:  stmt.ColumnText(7),
			Downloadable: stmt.ColumnInt64(8) != 0,
			Extension:    stmt.ColumnText(9),
		},
		Locations: make([]core.Location, 0),
	}
	if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &r.Metadata); err != nil {
		return r, fmt.Errorf("store: decoding metadata for %s: %w", r.Name, err)
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	return r, nil
}

// fetches resources (with their locations) matching the given clause
func selectResources(conn *sqlite.Conn, suffix string, args []any) ([]core.Resource, error) {
	resources := make([]core.Resource, 0)
	err := sqlitex.Execute(conn, resourceSelect+suffix, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r, err := scanResource(stmt)
			if err != nil {
				return err
			}
			resources = append(resources, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	err = attachLocations(conn, resources)
	return resources, err
}

// fills in the locations of the given resources in insertion order
func attachLocations(conn *sqlite.Conn, resources []core.Resource) error {
	index := make(map[int64]int, len(resources))
	ids := make([]any, len(resources))
	for i, r := range resources {
		index[r.Id] = i
		ids[i] = r.Id
	}
	for start := 0; start < len(ids); start += maxBoundIds {
		end := min(start+maxBoundIds, len(ids))
		err := sqlitex.Execute(conn,
			`SELECT l.id, l.resource_id, a.name, a.scheme, a.root
			FROM locations l JOIN archives a ON a.id = l.archive_id
			WHERE l.resource_id IN (`+placeholders(end-start)+`) ORDER BY l.id`,
			&sqlitex.ExecOptions{
				Args: ids[start:end],
				ResultFunc: func(stmt *sqlite.Stmt) error {
					i := index[stmt.ColumnInt64(1)]
					resources[i].Locations = append(resources[i].Locations, core.Location{
						Id:           stmt.ColumnInt64(0),
						ResourceName: resources[i].Name,
						Archive: core.Archive{
							Name:   stmt.ColumnText(2),
							Scheme: stmt.ColumnText(3),
							Root:   stmt.ColumnText(4),
						},
					})
					return nil
				},
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func lookupResource(conn *sqlite.Conn, name string) (core.Resource, error) {
	resources, err := selectResources(conn, ` WHERE r.name = ?`, []any{name})
	if err != nil {
		return core.Resource{}, err
	}
	if len(resources) == 0 {
		return core.Resource{}, NotFoundError{Kind: "resource", Name: name}
	}
	return resources[0], nil
}

// Returns one page of the resources passing the filter, ordered by name.
func (s *Store) ListResources(ctx context.Context, filter ResourceFilter, page Page) (ResourcePage, error) {
	if err := filter.validate(); err != nil {
		return ResourcePage{}, err
	}
	where := filter.where()
	suffix := where.sql() + ` ORDER BY r.name`
	args := where.args
	if page.Size > 0 {
		number := max(page.Number, 1)
		suffix += ` LIMIT ? OFFSET ?`
		args = append(append([]any{}, where.args...), page.Size, (number-1)*page.Size)
	}

	var result ResourcePage
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		count, _, err := queryInt64(conn, resourceCount+where.sql(), where.args...)
		if err != nil {
			return err
		}
		result.Count = int(count)
		result.Resources, err = selectResources(conn, suffix, args)
		return err
	})
	return result, err
}

// Returns the named resource with its locations.
func (s *Store) Resource(ctx context.Context, name string) (core.Resource, error) {
	var resource core.Resource
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		var err error
		resource, err = lookupResource(conn, name)
		return err
	})
	return resource, err
}

// Returns the named resources in the order given, skipping unknown names.
func (s *Store) ResourcesByName(ctx context.Context, names []string) ([]core.Resource, error) {
	byName := make(map[string]core.Resource, len(names))
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		for start := 0; start < len(names); start += maxBoundIds {
			end := min(start+maxBoundIds, len(names))
			args := make([]any, 0, end-start)
			for _, name := range names[start:end] {
				args = append(args, name)
			}
			resources, err := selectResources(conn,
				` WHERE r.name IN (`+placeholders(len(args))+`)`, args)
			if err != nil {
				return err
			}
			for _, r := range resources {
				byName[r.Name] = r
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resources := make([]core.Resource, 0, len(byName))
	for _, name := range names {
		if r, found := byName[name]; found {
			resources = append(resources, r)
			delete(byName, name)
		}
	}
	return resources, nil
}

// Returns the resources located in the named archive, ordered by name.
func (s *Store) ResourcesInArchive(ctx context.Context, archive string) ([]core.Resource, error) {
	var resources []core.Resource
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		archiveId, _, err := lookupArchive(conn, archive)
		if err != nil {
			return err
		}
		resources, err = selectResources(conn,
			` WHERE EXISTS (SELECT 1 FROM locations l WHERE l.resource_id = r.id AND l.archive_id = ?)
			ORDER BY r.name`, []any{archiveId})
		return err
	})
	return resources, err
}

// returns an unused generated name
func (s *Store) generateName(conn *sqlite.Conn) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name, err := core.RandomId(s.autoIdLength)
		if err != nil {
			return "", err
		}
		_, taken, err := queryInt64(conn, `SELECT id FROM resources WHERE name = ?`, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", fmt.Errorf("store: couldn't generate an unused name in %d attempts", maxNameAttempts)
}

// checks that no other resource has the given sha1
func checkSha1Unused(conn *sqlite.Conn, sha1 string, resourceId int64) error {
	if sha1 == "" {
		return nil
	}
	_, taken, err := queryInt64(conn,
		`SELECT id FROM resources WHERE sha1 = ? AND id <> ?`, sha1, resourceId)
	if err != nil {
		return err
	}
	if taken {
		return AlreadyExistsError{Kind: "resource", Field: "sha1"}
	}
	return nil
}

// adds a location for the resource in the named archive
func insertLocation(conn *sqlite.Conn, resourceId int64, archive string) error {
	archiveId, _, err := lookupArchive(conn, archive)
	if err != nil {
		return err
	}
	err = sqlitex.Execute(conn,
		`INSERT INTO locations (resource_id, archive_id) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{resourceId, archiveId}})
	if isUniqueViolation(err, "locations.resource_id") {
		return AlreadyExistsError{Kind: "location", Field: "resource and archive"}
	}
	return err
}

func nullableSha1(sha1 string) any {
	if sha1 == "" {
		return nil
	}
	return sha1
}

// Registers a resource on behalf of the given user. The resource and all of
// its locations are added together or not at all.
func (s *Store) CreateResource(ctx context.Context, req ResourceCreate, actor Actor) (core.Resource, error) {
	req.Sha1 = strings.ToLower(req.Sha1)
	probe := core.Resource{Name: req.Name, Sha1: req.Sha1}
	if probe.Name == "" {
		// stands in for the generated name
		probe.Name = "auto"
	}
	if err := validationError(core.ValidateStruct(probe)); err != nil {
		return core.Resource{}, err
	}
	if req.Metadata == nil {
		req.Metadata = make(map[string]any)
	}
	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		return core.Resource{}, ValidationError{Field: "metadata", Message: err.Error()}
	}

	var resource core.Resource
	err = s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		dtype, err := s.queryDataType(conn, req.Dtype)
		if err != nil {
			return err
		}
		userId, err := ensureUser(conn, actor.Name)
		if err != nil {
			return err
		}

		name := req.Name
		if name == "" {
			if name, err = s.generateName(conn); err != nil {
				return err
			}
		} else {
			_, taken, err := queryInt64(conn, `SELECT id FROM resources WHERE name = ?`, name)
			if err != nil {
				return err
			}
			if taken {
				return AlreadyExistsError{Kind: "resource", Field: "name"}
			}
		}
		if err := checkSha1Unused(conn, req.Sha1, 0); err != nil {
			return err
		}

		err = sqlitex.Execute(conn,
			`INSERT INTO resources (name, sha1, dtype_id, metadata, created_by_id, created_on)
			VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{name, nullableSha1(req.Sha1), dtype.id, string(metadata),
					userId, formatTime(time.Now())},
			})
		if err != nil {
			return err
		}
		resourceId := conn.LastInsertRowID()
		for _, archive := range req.Locations {
			if err := insertLocation(conn, resourceId, archive); err != nil {
				return err
			}
		}
		resource, err = lookupResource(conn, name)
		return err
	})
	return resource, err
}

// merges a patch into existing metadata; nil values remove keys
func mergeMetadata(current, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// Applies a patch to the named resource on behalf of the given user,
// returning its new state.
func (s *Store) UpdateResource(ctx context.Context, name string, patch ResourcePatch, actor Actor) (core.Resource, error) {
	var resource core.Resource
	err := s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		current, err := lookupResource(conn, name)
		if err != nil {
			return err
		}
		if patch.Name != nil && *patch.Name != current.Name {
			return ValidationError{Field: "name", Message: "cannot be changed"}
		}

		sha1 := current.Sha1
		if patch.Sha1 != nil {
			sha1 = strings.ToLower(*patch.Sha1)
			if sha1 != current.Sha1 {
				if current.Sha1 != "" && !actor.Superuser {
					return PermissionDeniedError{User: actor.Name, Action: "change the sha1 of a resource"}
				}
				err := validationError(core.ValidateStruct(core.Resource{Name: current.Name, Sha1: sha1}))
				if err != nil {
					return err
				}
				if err := checkSha1Unused(conn, sha1, current.Id); err != nil {
					return err
				}
			}
		}

		dtypeName := current.Dtype.Name
		if patch.Dtype != nil {
			dtypeName = *patch.Dtype
		}
		dtype, err := s.queryDataType(conn, dtypeName)
		if err != nil {
			return err
		}

		metadata, err := json.Marshal(mergeMetadata(current.Metadata, patch.Metadata))
		if err != nil {
			return ValidationError{Field: "metadata", Message: err.Error()}
		}

		err = sqlitex.Execute(conn,
			`UPDATE resources SET sha1 = ?, dtype_id = ?, metadata = ? WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{nullableSha1(sha1), dtype.id, string(metadata), current.Id},
			})
		if err != nil {
			return err
		}

		for _, archive := range patch.Locations {
			if _, found := locationIn(current, archive); found {
				continue
			}
			if err := insertLocation(conn, current.Id, archive); err != nil {
				return err
			}
		}
		resource, err = lookupResource(conn, name)
		return err
	})
	return resource, err
}

// returns an error unless the actor registered the resource or is a superuser
func checkOwner(resource core.Resource, actor Actor, action string) error {
	if actor.Superuser || actor.Name == resource.CreatedBy {
		return nil
	}
	return PermissionDeniedError{User: actor.Name, Action: action}
}

// Removes the named resource and its locations. Only the user who
// registered it or a superuser may do so.
func (s *Store) DeleteResource(ctx context.Context, name string, actor Actor) error {
	return s.withTransaction(ctx, func(conn *sqlite.Conn) error {
		resource, err := lookupResource(conn, name)
		if err != nil {
			return err
		}
		if err := checkOwner(resource, actor, "delete resource '"+name+"'"); err != nil {
			return err
		}
		return sqlitex.Execute(conn, `DELETE FROM resources WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{resource.Id}})
	})
}
