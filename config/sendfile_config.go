package config

import (
	"fmt"
)

// names of supported sendfile backends
const (
	SendfileSimple = "simple"
	SendfileNginx  = "nginx"
)

// settings for delivering resource content to clients
type sendfileConfig struct {
	// "simple" streams files from the service itself, "nginx" hands them off
	// with an X-Accel-Redirect header
	Backend string `yaml:"backend"`
	// filesystem prefix removed from resolved paths (nginx only)
	Root string `yaml:"root"`
	// internal URL prefix prepended to the remaining path (nginx only)
	URL string `yaml:"url"`
}

func validateSendfile(params sendfileConfig) error {
	switch params.Backend {
	case SendfileSimple:
	case SendfileNginx:
		if params.URL == "" {
			return fmt.Errorf("The nginx sendfile backend requires a url")
		}
	default:
		return fmt.Errorf("Invalid sendfile backend: %s (must be %s or %s)",
			params.Backend, SendfileSimple, SendfileNginx)
	}
	return nil
}
