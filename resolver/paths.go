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

package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// subdirectory of a neurobank archive root that holds resources
const ResourcesDir = "resources"

// number of leading characters of a resource name used as its shard directory
const shardLength = 2

// Returns the shard subdirectory for the given resource name: its first two
// characters, or the whole name if it is shorter than that.
func ShardPrefix(name string) string {
	if len(name) < shardLength {
		return name
	}
	return name[:shardLength]
}

// Returns the extension-less path at which a neurobank archive rooted at
// root stores the named resource: root/resources/<shard>/<name>.
func BasePath(root, name string) string {
	return filepath.Join(root, ResourcesDir, ShardPrefix(name), name)
}

// Finds the file for an extension-less base path. An entry at exactly
// basePath wins; otherwise the first entry in the shard directory (in
// lexical order) named "<name>.<anything>" is returned.
func ResolveExtension(fsys afero.Fs, basePath string) (string, error) {
	_, err := fsys.Stat(basePath)
	if err == nil {
		return basePath, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		// permission problems and the like are treated as "not there"
		slog.Debug(fmt.Sprintf("Couldn't stat %s: %s", basePath, err))
	}

	dir, name := filepath.Split(basePath)
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		slog.Debug(fmt.Sprintf("Couldn't list %s: %s", dir, err))
		return "", NotFoundError{Path: basePath}
	}
	prefix := name + "."
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", NotFoundError{Path: basePath}
}
