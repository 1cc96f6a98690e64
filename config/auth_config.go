package config

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

type authConfig struct {
	// file with user records (relative paths are taken from data_dir)
	UsersFile string `yaml:"users_file"`
	// fernet key used to decrypt the users file. If empty, the file is read
	// as plain text.
	// DO NOT STORE THIS IN A CONFIG FILE! Use an environment variable instead
	Secret string `yaml:"secret"`
}

func validateAuth(params authConfig) error {
	if params.Secret != "" {
		if _, err := fernet.DecodeKey(params.Secret); err != nil {
			return fmt.Errorf("Invalid auth secret: %s", err)
		}
	}
	return nil
}
