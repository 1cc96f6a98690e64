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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// accumulates the conditions of a WHERE clause and their arguments
type whereClause struct {
	conditions []string
	args       []any
}

func (w *whereClause) add(condition string, args ...any) {
	w.conditions = append(w.conditions, condition)
	w.args = append(w.args, args...)
}

// returns " WHERE ..." or an empty string if there are no conditions
func (w whereClause) sql() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// comparisons available for metadata filters
const (
	MetadataEquals      = "exact"
	MetadataNotEquals   = "neq"
	MetadataIsNull      = "isnull"
	MetadataContains    = "icontains"
	MetadataStartsWith  = "istartswith"
	metadataParamPrefix = "metadata__"
)

// A MetadataFilter compares a (possibly nested) metadata value to a string.
type MetadataFilter struct {
	// keys leading to the value, outermost first
	Path []string
	// one of the Metadata* comparisons
	Op    string
	Value string
}

// Parses a query parameter of the form metadata__key[__subkey...][__op].
// Returns false if the parameter isn't a metadata filter.
func ParseMetadataFilter(param, value string) (MetadataFilter, bool) {
	if !strings.HasPrefix(param, metadataParamPrefix) {
		return MetadataFilter{}, false
	}
	path := strings.Split(strings.TrimPrefix(param, metadataParamPrefix), "__")
	filter := MetadataFilter{Op: MetadataEquals, Value: value}
	if n := len(path); n > 1 {
		switch path[n-1] {
		case MetadataNotEquals, MetadataIsNull, MetadataContains, MetadataStartsWith, MetadataEquals:
			filter.Op = path[n-1]
			path = path[:n-1]
		}
	}
	for _, key := range path {
		if key == "" {
			return MetadataFilter{}, false
		}
	}
	filter.Path = path
	return filter, true
}

// returns the SQLite JSON path for the filter's keys
func (f MetadataFilter) jsonPath() string {
	var b strings.Builder
	b.WriteString("$")
	for _, key := range f.Path {
		b.WriteString(`."`)
		b.WriteString(strings.ReplaceAll(key, `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

// JSON booleans come back from json_extract as 1 and 0
func comparableValue(value string) string {
	switch strings.ToLower(value) {
	case "true":
		return "1"
	case "false":
		return "0"
	}
	return value
}

// adds the filter's condition on the given metadata column
func (f MetadataFilter) addTo(where *whereClause, column string) {
	extract := fmt.Sprintf("json_extract(%s, ?)", column)
	text := fmt.Sprintf("CAST(%s AS TEXT)", extract)
	path := f.jsonPath()
	switch f.Op {
	case MetadataNotEquals:
		where.add(fmt.Sprintf("(%s IS NULL OR %s <> ?)", extract, text),
			path, path, comparableValue(f.Value))
	case MetadataIsNull:
		if isTrue(f.Value) {
			where.add(extract+" IS NULL", path)
		} else {
			where.add(extract+" IS NOT NULL", path)
		}
	case MetadataContains:
		where.add(fmt.Sprintf(`lower(%s) LIKE lower(?) ESCAPE '\'`, text),
			path, containsPattern(f.Value))
	case MetadataStartsWith:
		where.add(fmt.Sprintf(`lower(%s) LIKE lower(?) ESCAPE '\'`, text),
			path, prefixPattern(f.Value))
	default:
		where.add(text+" = ?", path, comparableValue(f.Value))
	}
}

func isTrue(value string) bool {
	b, err := strconv.ParseBool(value)
	return err == nil && b
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Criteria for listing resources. Empty fields match everything. String
// fields other than Scheme and the dates match case-insensitive substrings.
type ResourceFilter struct {
	Name      string
	Sha1      string
	Dtype     string
	// name of an archive holding the resource
	Location  string
	CreatedBy string
	// case-insensitive prefix of the scheme of an archive holding the resource
	Scheme string
	// registration date (YYYY-MM-DD)
	CreatedOn string
	// registration year
	CreatedOnYear int
	// inclusive registration date range (YYYY-MM-DD)
	CreatedAfter, CreatedBefore string
	Metadata                    []MetadataFilter
}

// checks the date fields of the filter
func (f ResourceFilter) validate() error {
	dates := []struct{ field, value string }{
		{"created_on", f.CreatedOn},
		{"created_on__range", f.CreatedAfter},
		{"created_on__range", f.CreatedBefore},
	}
	for _, date := range dates {
		if date.value != "" && !datePattern.MatchString(date.value) {
			return ValidationError{
				Field:   date.field,
				Message: fmt.Sprintf("'%s' is not a date of the form YYYY-MM-DD", date.value),
			}
		}
	}
	return nil
}

// builds the WHERE clause selecting filtered resources aliased as r, joined
// to users u and datatypes d
func (f ResourceFilter) where() whereClause {
	var where whereClause
	if f.Name != "" {
		where.add(`lower(r.name) LIKE lower(?) ESCAPE '\'`, containsPattern(f.Name))
	}
	if f.Sha1 != "" {
		where.add(`lower(r.sha1) LIKE lower(?) ESCAPE '\'`, containsPattern(f.Sha1))
	}
	if f.Dtype != "" {
		where.add(`lower(d.name) LIKE lower(?) ESCAPE '\'`, containsPattern(f.Dtype))
	}
	if f.CreatedBy != "" {
		where.add(`lower(u.name) LIKE lower(?) ESCAPE '\'`, containsPattern(f.CreatedBy))
	}
	if f.Location != "" {
		where.add(`EXISTS (SELECT 1 FROM locations l JOIN archives a ON a.id = l.archive_id
			WHERE l.resource_id = r.id AND lower(a.name) LIKE lower(?) ESCAPE '\')`,
			containsPattern(f.Location))
	}
	if f.Scheme != "" {
		where.add(`EXISTS (SELECT 1 FROM locations l JOIN archives a ON a.id = l.archive_id
			WHERE l.resource_id = r.id AND lower(a.scheme) LIKE lower(?) ESCAPE '\')`,
			prefixPattern(f.Scheme))
	}
	if f.CreatedOn != "" {
		where.add(`date(r.created_on) = ?`, f.CreatedOn)
	}
	if f.CreatedOnYear != 0 {
		where.add(`strftime('%Y', r.created_on) = ?`, fmt.Sprintf("%04d", f.CreatedOnYear))
	}
	if f.CreatedAfter != "" {
		where.add(`date(r.created_on) >= ?`, f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		where.add(`date(r.created_on) <= ?`, f.CreatedBefore)
	}
	for _, m := range f.Metadata {
		m.addTo(&where, "r.metadata")
	}
	return where
}
