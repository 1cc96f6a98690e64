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

package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// message reported for names that aren't slugs
const SlugMessage = "can only contain letters, numbers, underscores, and hyphens"

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

// This error type is returned when a field fails validation.
type InvalidFieldError struct {
	Field, Message string
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Returns true if the given string is a valid name for a resource, datatype,
// or archive.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Validates the given struct using its `validate` tags, returning an
// InvalidFieldError describing the first failure.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return InvalidFieldError{
			Field:   fe.Field(),
			Message: describeFieldError(fe),
		}
	}
	return err
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "slug":
		return SlugMessage
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "len", "hexadecimal":
		return "must be a 40-character hexadecimal string"
	default:
		return fmt.Sprintf("failed the '%s' check", fe.Tag())
	}
}
