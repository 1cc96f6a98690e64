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

// The registry schema. Statements are idempotent so the script runs each
// time a store is opened.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS datatypes (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	content_type TEXT NOT NULL DEFAULT '',
	downloadable INTEGER NOT NULL DEFAULT 0,
	extension    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS archives (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	scheme TEXT NOT NULL,
	root   TEXT NOT NULL,
	UNIQUE (scheme, root)
);

CREATE TABLE IF NOT EXISTS resources (
	id            INTEGER PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	sha1          TEXT UNIQUE,
	dtype_id      INTEGER NOT NULL REFERENCES datatypes(id) ON DELETE RESTRICT,
	metadata      TEXT NOT NULL DEFAULT '{}',
	created_by_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_on    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS resources_dtype ON resources(dtype_id);
CREATE INDEX IF NOT EXISTS resources_created_by ON resources(created_by_id);

CREATE TABLE IF NOT EXISTS locations (
	id          INTEGER PRIMARY KEY,
	resource_id INTEGER NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	archive_id  INTEGER NOT NULL REFERENCES archives(id) ON DELETE CASCADE,
	UNIQUE (resource_id, archive_id)
);

CREATE INDEX IF NOT EXISTS locations_archive ON locations(archive_id);
`
