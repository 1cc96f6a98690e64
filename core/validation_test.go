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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsValidResource(t *testing.T) {
	r := Resource{
		Name: "ab12_cd-34",
		Sha1: "0123456789abcdefABCDEF0123456789abcdef01",
	}
	assert.Nil(t, ValidateStruct(r))
}

func TestValidateAcceptsMissingSha1(t *testing.T) {
	assert.Nil(t, ValidateStruct(Resource{Name: "abc"}))
}

func TestValidateRejectsNonSlugName(t *testing.T) {
	err := ValidateStruct(Resource{Name: "bad name!"})
	assert.Equal(t, InvalidFieldError{Field: "name", Message: SlugMessage}, err)
	assert.Equal(t, "name: can only contain letters, numbers, underscores, and hyphens", err.Error())
}

func TestValidateRejectsBadSha1(t *testing.T) {
	for _, sha1 := range []string{"abc", strings.Repeat("z", 40), strings.Repeat("a", 41)} {
		err := ValidateStruct(Resource{Name: "abc", Sha1: sha1})
		var fieldErr InvalidFieldError
		if assert.ErrorAs(t, err, &fieldErr) {
			assert.Equal(t, "sha1", fieldErr.Field)
		}
	}
}

func TestValidateRejectsMissingName(t *testing.T) {
	err := ValidateStruct(Archive{Scheme: "neurobank", Root: "/tmp"})
	assert.Equal(t, InvalidFieldError{Field: "name", Message: "this field is required"}, err)
}

func TestValidateResourceNameLength(t *testing.T) {
	assert.Nil(t, ValidateStruct(Resource{Name: strings.Repeat("a", 255)}))
	err := ValidateStruct(Resource{Name: strings.Repeat("a", 256)})
	assert.Equal(t, InvalidFieldError{
		Field:   "name",
		Message: "ensure this field has no more than 255 characters",
	}, err)
}

func TestValidateRejectsLongArchiveScheme(t *testing.T) {
	err := ValidateStruct(Archive{Name: "a", Scheme: strings.Repeat("s", 17), Root: "/tmp"})
	assert.Equal(t, InvalidFieldError{
		Field:   "scheme",
		Message: "ensure this field has no more than 16 characters",
	}, err)
}

func TestValidateDataType(t *testing.T) {
	assert.Nil(t, ValidateStruct(DataType{Name: "wav", ContentType: "audio/wav"}))
	assert.NotNil(t, ValidateStruct(DataType{Name: "w/a/v"}))
}
