package restmachinery

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envconfigPrefix = "API_SERVER"

// Config represents configuration options for the API server. We use an
// exported interface to govern access to our config because the underlying
// struct has fields we don't want to expose.
type Config interface {
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
	// SessionCookieSecure indicates whether the session cookie should only be
	// sent by browsers over HTTPS.
	SessionCookieSecure() bool
	// SessionTTL is how long an authenticated login session remains valid.
	SessionTTL() time.Duration
}

type config struct {
	PortAttr                int           `envconfig:"PORT"`
	TLSEnabledAttr          bool          `envconfig:"TLS_ENABLED"`
	TLSCertPathAttr         string        `envconfig:"TLS_CERT_PATH"`
	TLSKeyPathAttr          string        `envconfig:"TLS_KEY_PATH"`
	SessionCookieSecureAttr bool          `envconfig:"SESSION_COOKIE_SECURE"`
	SessionTTLAttr          time.Duration `envconfig:"SESSION_TTL"`
}

// NewConfigWithDefaults returns a Config object with default values already
// applied. Callers are then free to set custom values for the remaining fields
// and/or override default values.
func NewConfigWithDefaults() Config {
	return &config{
		PortAttr:       8080,
		SessionTTLAttr: 24 * time.Hour,
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables
func GetConfigFromEnvironment() (Config, error) {
	c := NewConfigWithDefaults().(*config)
	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return c, err
	}

	if c.TLSEnabledAttr {
		if c.TLSCertPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"TLS_CERT_PATH environment variable",
			)
		}
		if c.TLSKeyPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"TLS_KEY_PATH environment variable",
			)
		}
	}

	if c.SessionTTLAttr <= 0 {
		return c, errors.New(
			"the SESSION_TTL environment variable must be a positive duration",
		)
	}

	return c, nil
}

func (c *config) Port() int {
	return c.PortAttr
}

func (c *config) TLSEnabled() bool {
	return c.TLSEnabledAttr
}

func (c *config) TLSCertPath() string {
	return c.TLSCertPathAttr
}

func (c *config) TLSKeyPath() string {
	return c.TLSKeyPathAttr
}

func (c *config) SessionCookieSecure() bool {
	return c.SessionCookieSecureAttr
}

func (c *config) SessionTTL() time.Duration {
	return c.SessionTTLAttr
}
