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
	"strings"
)

// This error type is returned when a named resource, datatype, archive,
// location, or user doesn't exist.
type NotFoundError struct {
	Kind, Name string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no such %s '%s'", e.Kind, e.Name)
}

// This error type is returned when a record would duplicate a unique field
// of an existing one.
type AlreadyExistsError struct {
	Kind, Field string
}

func (e AlreadyExistsError) Error() string {
	article := "a"
	if strings.ContainsAny(e.Kind[:1], "aeiou") {
		article = "an"
	}
	return fmt.Sprintf("%s %s with this %s already exists", article, e.Kind, e.Field)
}

// This error type is returned when a submitted value is invalid.
type ValidationError struct {
	Field, Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// This error type is returned when deleting a record would orphan others.
type ProtectedError struct {
	Kind, Name, Reason string
}

func (e ProtectedError) Error() string {
	return fmt.Sprintf("cannot delete %s '%s': %s", e.Kind, e.Name, e.Reason)
}

// This error type is returned when a user attempts a change they aren't
// allowed to make.
type PermissionDeniedError struct {
	User, Action string
}

func (e PermissionDeniedError) Error() string {
	return fmt.Sprintf("user '%s' does not have permission to %s", e.User, e.Action)
}
