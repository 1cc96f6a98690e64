package core

import (
	"fmt"
	"time"

	"github.com/melizalab/nbank-registry/config"
)

// Version numbers
var MajorVersion = 0
var MinorVersion = 4
var PatchVersion = 0

// Version string
var Version = fmt.Sprintf("%d.%d.%d", MajorVersion, MinorVersion, PatchVersion)

// version of the REST API served under the registry's base path
const ApiVersion = "1.0"

// Indicates whether core.Init() has been called
var initialized = false

// The time the application started.
var startTime time.Time

// Initializes application utilities from the given YAML configuration.
func Init(yamlConfig []byte) error {

	if !initialized {
		startTime = time.Now()
		initialized = true
	}
	return config.Init(yamlConfig)
}

// Returns the application's uptime in seconds.
func Uptime() float64 {
	return time.Since(startTime).Seconds()
}
