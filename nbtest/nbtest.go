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

// This package contains testing utilities for the neurobank registry.
package nbtest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernet/fernet-go"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"github.com/melizalab/nbank-registry/resolver"
)

// Enables DEBUG log messages for the registry's structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

//--------------------
// Users file fixtures
//--------------------

// A user for whom a users file record is written.
type User struct {
	Name     string
	Email    string
	Password string
	IsSuper  bool
}

// Returns the tab-separated users file content for the given users. Hashes
// use the minimum bcrypt cost to keep tests quick.
func UsersTSV(users ...User) (string, error) {
	var b strings.Builder
	b.WriteString("# Username | Email | Superuser | Password hash\n")
	for _, user := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s\t%s\t%t\t%s\n", user.Name, user.Email, user.IsSuper, hash)
	}
	return b.String(), nil
}

// Writes a users file for the given users, encrypted with the given fernet
// key unless it is empty.
func WriteUsersFile(path, secret string, users ...User) error {
	tsv, err := UsersTSV(users...)
	if err != nil {
		return err
	}
	content := []byte(tsv)
	if secret != "" {
		key, err := fernet.DecodeKey(secret)
		if err != nil {
			return err
		}
		content, err = fernet.EncryptAndSign(content, key)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, content, 0600)
}

// Returns a freshly generated, encoded fernet key.
func GenerateSecret() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", err
	}
	return key.Encode(), nil
}

//-----------------
// Archive fixtures
//-----------------

// Creates an empty neurobank archive at the given root.
func CreateArchive(fsys afero.Fs, root string) error {
	return fsys.MkdirAll(filepath.Join(root, resolver.ResourcesDir), 0755)
}

// Writes a resource file into the neurobank archive at root, returning its
// path. If ext is not empty it's appended to the stored filename.
func AddResourceFile(fsys afero.Fs, root, name, ext string, content []byte) (string, error) {
	path := resolver.BasePath(root, name)
	if ext != "" {
		path += "." + strings.TrimPrefix(ext, ".")
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, afero.WriteFile(fsys, path, content, 0644)
}

// Creates a directory resource in the neurobank archive at root, returning
// its path.
func AddResourceDir(fsys afero.Fs, root, name string) (string, error) {
	path := resolver.BasePath(root, name)
	return path, fsys.MkdirAll(path, 0755)
}
