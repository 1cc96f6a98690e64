package config

import (
	"fmt"
	"time"
)

// parameters governing registration of resources
type registryConfig struct {
	// length of server-generated resource names
	AutoIdLength int `yaml:"auto_id_length"`
	// how long datatype lookups stay cached
	CacheExpiration time.Duration `yaml:"cache_expiration"`
}

func validateRegistry(params registryConfig) error {
	if params.AutoIdLength < 1 || params.AutoIdLength > 64 {
		return fmt.Errorf("Invalid auto_id_length: %d (must be 1-64)", params.AutoIdLength)
	}
	if params.CacheExpiration < 0 {
		return fmt.Errorf("Invalid cache_expiration: %s (must be non-negative)",
			params.CacheExpiration)
	}
	return nil
}
