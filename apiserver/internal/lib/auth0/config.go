package auth0

import (
	"fmt"
	"net/url"

	"github.com/kelseyhightower/envconfig"
)

const envconfigPrefix = "AUTH0"

// Config represents the settings required to call the Auth0 Management API
// using the client credentials grant.
type Config struct {
	// Domain is the Auth0 tenant's domain, e.g. example.eu.auth0.com
	Domain       string `envconfig:"DOMAIN"`
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	// Audience defaults to the tenant's Management API identifier.
	Audience string `envconfig:"AUDIENCE"`
	// BaseURL overrides the https://{Domain} base URL. It is not read from the
	// environment.
	BaseURL string `ignored:"true"`
}

// GetConfigFromEnvironment returns Auth0 configuration derived from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, err
}

// Enabled returns true when enough settings are present to call the
// Management API.
func (c Config) Enabled() bool {
	return c.Domain != "" && c.ClientID != "" && c.ClientSecret != ""
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s", c.Domain)
}

func (c Config) audience() string {
	if c.Audience != "" {
		return c.Audience
	}
	return fmt.Sprintf("https://%s/api/v2/", c.Domain)
}

// LogoutURL returns the URL of the tenant's logout endpoint, which clears the
// provider's own session before redirecting to returnTo. It returns an empty
// string when no domain is configured.
func (c Config) LogoutURL(clientID string, returnTo string) string {
	if c.Domain == "" {
		return ""
	}
	return fmt.Sprintf(
		"%s/v2/logout?client_id=%s&returnTo=%s",
		c.baseURL(),
		url.QueryEscape(clientID),
		url.QueryEscape(returnTo),
	)
}
