package minio

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

const envconfigPrefix = "MINIO"

// Config represents the settings needed to store avatars in MinIO or another
// S3-compatible object store.
type Config struct {
	Enabled   bool   `envconfig:"ENABLED"`
	Endpoint  string `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"ACCESS_KEY"`
	SecretKey string `envconfig:"SECRET_KEY"`
	Bucket    string `envconfig:"BUCKET" default:"avatars"`
	UseSSL    bool   `envconfig:"USE_SSL"`
	// PublicURL is the base URL clients use to fetch stored objects. It
	// defaults to the endpoint.
	PublicURL string `envconfig:"PUBLIC_URL"`
}

// GetConfigFromEnvironment returns MinIO configuration derived from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, err
	}
	if !c.Enabled {
		return c, nil
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return c, errors.New(
			"MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set when " +
				"MINIO_ENABLED is true",
		)
	}
	return c, nil
}

func (c Config) publicURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

// Client returns a MinIO client for the provided configuration.
func Client(config Config) (*minio.Client, error) {
	client, err := minio.New(
		config.Endpoint,
		&minio.Options{
			Creds: credentials.NewStaticV4(
				config.AccessKey,
				config.SecretKey,
				"",
			),
			Secure: config.UseSSL,
		},
	)
	return client, errors.Wrapf(err, "error creating minio client for %s", config.Endpoint)
}
