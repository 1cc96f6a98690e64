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

// These tests verify that the authenticator matches a username and password
// to a record in an (optionally encrypted) tab-separated variable (TSV) file.
package auth

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/nbtest"
)

// runs setup, runs all tests, and does breakdown
func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}

// runs all tests serially
func TestRunner(t *testing.T) {
	tester := SerialTests{Test: t}
	tester.TestNewAuthenticator()
	tester.TestMissingUsersFile()
	tester.TestWrongSecret()
	tester.TestPlainUsersFile()
	tester.TestAuthenticate()
	tester.TestAuthenticateInvalidUser()
}

// Fernet encryption/decryption key
var TestKey fernet.Key

// temporary testing directory
var TestDir string

// test users
var TestUser = nbtest.User{
	Name:     "dmeliza",
	Email:    "dmeliza@example.com",
	Password: "zebra-finch",
}

var TestSuperuser = nbtest.User{
	Name:     "admin",
	Email:    "admin@example.com",
	Password: "starling",
	IsSuper:  true,
}

func setup() {
	nbtest.EnableDebugLogging()

	log.Print("Creating testing directory...\n")
	var err error
	TestDir, err = os.MkdirTemp(os.TempDir(), "nbank-registry-auth-tests-")
	if err != nil {
		log.Panicf("Couldn't create testing directory: %s", err.Error())
	}

	err = TestKey.Generate()
	if err != nil {
		log.Panicf("Couldn't generate encryption key: %s", err.Error())
	}
	config.Auth.Secret = TestKey.Encode()
	config.Auth.UsersFile = filepath.Join(TestDir, "users.dat")

	// write a users TSV file and encrypt it with the secret
	err = nbtest.WriteUsersFile(config.Auth.UsersFile, config.Auth.Secret, TestUser, TestSuperuser)
	if err != nil {
		log.Panicf("Couldn't write test users file: %s", err.Error())
	}
}

// To run the tests serially, we attach them to a SerialTests type and
// have them run by a a single test runner.
type SerialTests struct{ Test *testing.T }

// tests whether an authenticator can be constructed from the encrypted file
func (t *SerialTests) TestNewAuthenticator() {
	assert := assert.New(t.Test)
	auth, err := NewAuthenticator()
	assert.NotNil(auth, "Authenticator not created")
	assert.Nil(err, "Authenticator constructor triggered an error")
}

// tests the case in which the configured users file doesn't exist
func (t *SerialTests) TestMissingUsersFile() {
	assert := assert.New(t.Test)
	usersFile := config.Auth.UsersFile
	config.Auth.UsersFile = filepath.Join(TestDir, "nobody.dat")
	auth, err := NewAuthenticator()
	assert.Nil(auth, "Authenticator created without a users file")
	assert.NotNil(err, "Missing users file triggered no error")
	config.Auth.UsersFile = usersFile
}

// tests the case in which the users file was encrypted with another key
func (t *SerialTests) TestWrongSecret() {
	assert := assert.New(t.Test)
	secret := config.Auth.Secret
	var otherKey fernet.Key
	assert.Nil(otherKey.Generate())
	config.Auth.Secret = otherKey.Encode()
	auth, err := NewAuthenticator()
	assert.Nil(auth)
	assert.NotNil(err)
	config.Auth.Secret = secret
}

// tests reading an unencrypted users file
func (t *SerialTests) TestPlainUsersFile() {
	assert := assert.New(t.Test)
	secret, usersFile := config.Auth.Secret, config.Auth.UsersFile
	config.Auth.Secret = ""
	config.Auth.UsersFile = filepath.Join(TestDir, "plain-users.dat")
	assert.Nil(nbtest.WriteUsersFile(config.Auth.UsersFile, "", TestUser))

	auth, err := NewAuthenticator()
	assert.Nil(err)
	user, found := auth.User(TestUser.Name)
	assert.True(found)
	assert.Equal(TestUser.Email, user.Email)
	_, found = auth.User(TestSuperuser.Name)
	assert.False(found)

	config.Auth.Secret, config.Auth.UsersFile = secret, usersFile
}

// tests whether the authenticator returns the records for valid credentials
func (t *SerialTests) TestAuthenticate() {
	assert := assert.New(t.Test)
	auth, err := NewAuthenticator()
	assert.NotNil(auth)
	assert.Nil(err)

	user, err := auth.Authenticate(TestUser.Name, TestUser.Password)
	assert.Nil(err)
	assert.Equal(TestUser.Name, user.Name)
	assert.Equal(TestUser.Email, user.Email)
	assert.False(user.IsSuper)

	user, err = auth.Authenticate(TestSuperuser.Name, TestSuperuser.Password)
	assert.Nil(err)
	assert.True(user.IsSuper)
}

// tests that unknown users and wrong passwords are rejected alike
func (t *SerialTests) TestAuthenticateInvalidUser() {
	assert := assert.New(t.Test)
	auth, err := NewAuthenticator()
	assert.Nil(err)
	_, err = auth.Authenticate("nobody", TestUser.Password)
	assert.Equal(ErrInvalidCredentials, err)
	_, err = auth.Authenticate(TestUser.Name, "not-the-password")
	assert.Equal(ErrInvalidCredentials, err)
	_, err = auth.Authenticate(TestUser.Name, "")
	assert.Equal(ErrInvalidCredentials, err)
}

func TestHashPassword(t *testing.T) {
	assert := assert.New(t)
	hash, err := HashPassword("zebra-finch")
	assert.Nil(err)
	assert.Nil(bcrypt.CompareHashAndPassword([]byte(hash), []byte("zebra-finch")))
	_, err = HashPassword("")
	assert.NotNil(err)
}

func TestEncryptUsers(t *testing.T) {
	assert := assert.New(t)
	plainText := []byte("dmeliza\tdmeliza@example.com\tfalse\thash\n")
	token, err := EncryptUsers(plainText, TestKey.Encode())
	assert.Nil(err)
	decrypted, err := decryptUsers(token, TestKey.Encode())
	assert.Nil(err)
	assert.Equal(plainText, decrypted)

	_, err = EncryptUsers(plainText, "not a key")
	assert.NotNil(err)
}

func TestBadSuperuserFlag(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "users.dat")
	assert.Nil(os.WriteFile(path, []byte("dmeliza\tdmeliza@example.com\tmaybe\thash\n"), 0600))
	_, err := readUsersFile(path, "")
	assert.NotNil(err)
}

func breakdown() {
	if TestDir != "" {
		log.Printf("Deleting testing directory %s...\n", TestDir)
		os.RemoveAll(TestDir)
	}
}
