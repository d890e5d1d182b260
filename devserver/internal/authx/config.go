package authx

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config represents configuration for authentication and seed data.
type Config struct {
	// SessionTTL is how long an issued token remains valid. Zero means tokens
	// never expire.
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"8h"`
	SeedEnabled      bool          `envconfig:"SEED_ENABLED" default:"true"`
	SeedUserName     string        `envconfig:"SEED_USER_NAME" default:"Demo User"`
	SeedUserEmail    string        `envconfig:"SEED_USER_EMAIL" default:"demo@bizdesk.example"` // nolint: lll
	SeedUserPassword string        `envconfig:"SEED_USER_PASSWORD" default:"bizdesk-demo"`
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables.
func GetConfigFromEnvironment() (Config, error) {
	config := Config{}
	if err := envconfig.Process("", &config); err != nil {
		return config, errors.Wrap(
			err,
			"error getting authentication configuration from environment",
		)
	}
	if config.SessionTTL < 0 {
		return config, errors.New("SESSION_TTL must not be negative")
	}
	return config, nil
}
