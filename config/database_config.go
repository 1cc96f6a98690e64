package config

import (
	"fmt"
)

// settings for the SQLite database holding the registry
type databaseConfig struct {
	// path to the database file (default: <data_dir>/registry.db)
	Path string `yaml:"path"`
	// number of pooled connections
	PoolSize int `yaml:"pool_size"`
}

func validateDatabase(params databaseConfig) error {
	if params.Path == "" {
		return fmt.Errorf("No database path was specified")
	}
	if params.PoolSize <= 0 {
		return fmt.Errorf("Invalid database pool_size: %d (must be positive)", params.PoolSize)
	}
	return nil
}
