package redis

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const envconfigPrefix = "REDIS"

// Config represents the settings needed to reach a Redis server.
type Config struct {
	Address  string `envconfig:"ADDRESS" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB"`
	// Prefix is prepended to every key written by this process so that several
	// deployments may share a database.
	Prefix string `envconfig:"PREFIX" default:"accounts"`
}

// GetConfigFromEnvironment returns Redis configuration derived from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, err
}

// Client returns a Redis client for the provided configuration after
// verifying that the server is reachable.
func Client(ctx context.Context, config Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "error pinging redis at %s", config.Address)
	}
	return client, nil
}
