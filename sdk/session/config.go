package session

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/go-redis/redis"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	storeEnvconfigPrefix = "BIZDESK"
	redisEnvconfigPrefix = "REDIS"

	storeTypeFile   = "file"
	storeTypeMemory = "memory"
	storeTypeRedis  = "redis"
)

// storeConfig represents configuration options for selecting a Store
type storeConfig struct {
	Type string `envconfig:"SESSION_STORE" default:"file"`
	// File overrides the location of the session file used by the file store
	File string `envconfig:"SESSION_FILE"`
}

// redisConfig represents common configuration options for a Redis connection
type redisConfig struct {
	Host      string `envconfig:"HOST" required:"true"`
	Port      int    `envconfig:"PORT" default:"6379"`
	Password  string `envconfig:"PASSWORD"`
	DB        int    `envconfig:"DB"`
	EnableTLS bool   `envconfig:"ENABLE_TLS"`
	Prefix    string `envconfig:"PREFIX" default:"bizdesk."`
}

// NewStoreFromEnvironment returns the Store selected by the
// BIZDESK_SESSION_STORE environment variable. Supported values are "file"
// (the default), "memory" and "redis". The redis store is configured using
// REDIS_* environment variables.
func NewStoreFromEnvironment() (Store, error) {
	c := storeConfig{}
	if err := envconfig.Process(storeEnvconfigPrefix, &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting session store configuration from environment",
		)
	}
	switch strings.ToLower(c.Type) {
	case storeTypeFile:
		if c.File != "" {
			return NewFileStore(c.File), nil
		}
		return NewFileStoreInHome()
	case storeTypeMemory:
		return NewMemoryStore(), nil
	case storeTypeRedis:
		client, prefix, err := redisClientFromEnvironment()
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, prefix), nil
	default:
		return nil, errors.Errorf("unsupported session store %q", c.Type)
	}
}

func redisClientFromEnvironment() (*redis.Client, string, error) {
	c := redisConfig{}
	err := envconfig.Process(redisEnvconfigPrefix, &c)
	if err != nil {
		return nil, "", errors.Wrap(
			err,
			"error getting redis configuration from environment",
		)
	}

	redisOpts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	}
	if c.EnableTLS {
		redisOpts.TLSConfig = &tls.Config{
			ServerName: c.Host,
		}
	}

	return redis.NewClient(redisOpts), c.Prefix, nil
}
