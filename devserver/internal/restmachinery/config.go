package restmachinery

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "API_SERVER"

// ServerConfig represents optional configuration for a REST API server.
type ServerConfig struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	TLSEnabled  bool   `envconfig:"TLS_ENABLED"`
	TLSCertPath string `envconfig:"TLS_CERT_PATH"`
	TLSKeyPath  string `envconfig:"TLS_KEY_PATH"`
}

// GetServerConfigFromEnvironment returns configuration derived from
// environment variables.
func GetServerConfigFromEnvironment() (ServerConfig, error) {
	config := ServerConfig{}
	if err := envconfig.Process(envconfigPrefix, &config); err != nil {
		return config, errors.Wrap(
			err,
			"error getting server configuration from environment",
		)
	}
	if config.TLSEnabled {
		if config.TLSCertPath == "" {
			return config, errors.New(
				"with TLS enabled, a value is required for the " +
					"API_SERVER_TLS_CERT_PATH environment variable",
			)
		}
		if config.TLSKeyPath == "" {
			return config, errors.New(
				"with TLS enabled, a value is required for the " +
					"API_SERVER_TLS_KEY_PATH environment variable",
			)
		}
	}
	return config, nil
}
