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

package auth

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/melizalab/nbank-registry/config"
)

// returned when a username and password don't match a user record
var ErrInvalidCredentials = errors.New("Invalid username or password")

type userRecord struct {
	User
	// bcrypt hash of the user's password
	hash []byte
}

// This type accepts a username and password in exchange for a user record.
// User records live in a tab-separated file that is maintained manually and
// may be encrypted with a fernet key.
type Authenticator struct {
	users map[string]userRecord
}

// Decrypts a fernet-encrypted users file with the given key. Tokens never
// expire.
func decryptUsers(encrypted []byte, secret string) ([]byte, error) {
	keys, err := fernet.DecodeKeys(secret)
	if err != nil {
		return nil, err
	}
	plainText := fernet.VerifyAndDecrypt(bytes.TrimSpace(encrypted), 0, keys)
	if plainText == nil {
		return nil, errors.New("Couldn't decrypt users file with the configured secret")
	}
	return plainText, nil
}

// Encrypts the contents of a users file with the given key.
func EncryptUsers(plainText []byte, secret string) ([]byte, error) {
	key, err := fernet.DecodeKey(secret)
	if err != nil {
		return nil, err
	}
	return fernet.EncryptAndSign(plainText, key)
}

// Returns a bcrypt hash of the given password suitable for a users file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("Password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// reads user records from the given file, decrypting it with the given
// fernet key if it isn't empty.
func readUsersFile(usersFilePath, secret string) (map[string]userRecord, error) {
	content, err := os.ReadFile(usersFilePath)
	if err != nil {
		return nil, err
	}
	plainText := content
	if secret != "" {
		plainText, err = decryptUsers(content, secret)
		if err != nil {
			return nil, err
		}
	}

	// the plaintext content is a tab-delimited file with records like so:
	// Username\tEmail\tSuperuser\tPasswordHash
	reader := csv.NewReader(bytes.NewReader(plainText))
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	users := make(map[string]userRecord)
	for _, record := range records {
		isSuper, err := strconv.ParseBool(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("Invalid superuser flag for user %s: %s", record[0], record[2])
		}
		users[record[0]] = userRecord{
			User: User{
				Name:    record[0],
				Email:   record[1],
				IsSuper: isSuper,
			},
			hash: []byte(record[3]),
		}
	}
	return users, nil
}

// creates an authenticator from the users file named in the configuration
func NewAuthenticator() (*Authenticator, error) {
	var a Authenticator
	var err error
	a.users, err = readUsersFile(config.Auth.UsersFile, config.Auth.Secret)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// given a username and password, returns a User or an error
func (a *Authenticator) Authenticate(username, password string) (User, error) {
	record, found := a.users[username]
	if !found {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(record.hash, []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return record.User, nil
}

// returns the named user, if any
func (a *Authenticator) User(username string) (User, bool) {
	record, found := a.users[username]
	return record.User, found
}
