package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// a type with service configuration parameters
type serviceConfig struct {
	// descriptive name of the service
	Name string `json:"name" yaml:"name"`
	// Port on which the service listens
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"max_connections" yaml:"max_connections"`
	// URL path prefix under which the API is mounted (e.g. "/neurobank")
	BasePath string `json:"base_path" yaml:"base_path"`
	// directory holding the registry database and users file
	DataDirectory string `json:"data_dir" yaml:"data_dir"`
	// default number of results per page for list endpoints
	PageSize int `json:"page_size" yaml:"page_size"`
}

// global config variables
var Service serviceConfig
var Database databaseConfig
var Registry registryConfig
var Auth authConfig
var Sendfile sendfileConfig
var Logging loggingConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service  serviceConfig  `yaml:"service"`
	Database databaseConfig `yaml:"database"`
	Registry registryConfig `yaml:"registry"`
	Auth     authConfig     `yaml:"auth"`
	Sendfile sendfileConfig `yaml:"sendfile"`
	Logging  loggingConfig  `yaml:"logging"`
}

// This helper reads configuration data, returning an error indicating success
// or failure. All environment variables of the form ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Service.Name = "neurobank registry"
	conf.Service.Port = 8000
	conf.Service.MaxConnections = 100
	conf.Service.PageSize = 100
	conf.Database.PoolSize = 4
	conf.Registry.AutoIdLength = 8
	conf.Registry.CacheExpiration = 10 * time.Minute
	conf.Auth.UsersFile = "users.dat"
	conf.Sendfile.Backend = SendfileSimple
	conf.Logging.Level = "info"
	conf.Logging.Format = "text"
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't parse configuration data: %s", err))
		return err
	}

	// paths relative to the data directory
	if conf.Database.Path == "" && conf.Service.DataDirectory != "" {
		conf.Database.Path = filepath.Join(conf.Service.DataDirectory, "registry.db")
	}
	if conf.Auth.UsersFile != "" && !filepath.IsAbs(conf.Auth.UsersFile) {
		conf.Auth.UsersFile = filepath.Join(conf.Service.DataDirectory, conf.Auth.UsersFile)
	}

	// copy the config data into place
	Service = conf.Service
	Database = conf.Database
	Registry = conf.Registry
	Auth = conf.Auth
	Sendfile = conf.Sendfile
	Logging = conf.Logging

	return err
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid max_connections: %d (must be positive)",
			params.MaxConnections)
	}
	if params.PageSize <= 0 {
		return fmt.Errorf("Invalid page_size: %d (must be positive)", params.PageSize)
	}
	if params.DataDirectory == "" {
		return fmt.Errorf("No data directory (data_dir) was specified")
	}
	info, err := os.Stat(params.DataDirectory)
	if err != nil {
		return fmt.Errorf("Invalid data directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("Invalid data directory: %s is not a directory",
			params.DataDirectory)
	}
	if params.BasePath != "" && params.BasePath[0] != '/' {
		return fmt.Errorf("Invalid base_path: %s (must begin with '/')", params.BasePath)
	}
	return nil
}

// This helper validates the configuration, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}
	if err = validateDatabase(Database); err != nil {
		return err
	}
	if err = validateRegistry(Registry); err != nil {
		return err
	}
	if err = validateAuth(Auth); err != nil {
		return err
	}
	if err = validateSendfile(Sendfile); err != nil {
		return err
	}
	return validateLogging(Logging)
}

// Initializes the registry configuration using the given YAML byte data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
