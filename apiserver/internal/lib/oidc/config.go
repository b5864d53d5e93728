package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

const (
	envconfigPrefix = "OIDC"
	callbackPath    = "callback"
)

type config struct {
	Enabled bool `envconfig:"ENABLED"`
	// ProviderURL examples:
	//   Auth0: https://{tenant}.auth0.com/
	//   Google: https://accounts.google.com
	ProviderURL     string `envconfig:"PROVIDER_URL"`
	ClientID        string `envconfig:"CLIENT_ID"`
	ClientSecret    string `envconfig:"CLIENT_SECRET"`
	RedirectURLBase string `envconfig:"REDIRECT_URL_BASE"`
}

func (c config) validate() error {
	if !c.Enabled {
		return nil
	}
	for _, setting := range []struct {
		name  string
		value string
	}{
		{"PROVIDER_URL", c.ProviderURL},
		{"CLIENT_ID", c.ClientID},
		{"CLIENT_SECRET", c.ClientSecret},
		{"REDIRECT_URL_BASE", c.RedirectURLBase},
	} {
		if setting.value == "" {
			return fmt.Errorf(
				"with OIDC enabled, a value is required for the %s_%s environment "+
					"variable",
				envconfigPrefix,
				setting.name,
			)
		}
	}
	return nil
}

func (c config) oauth2Config(endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		Endpoint:     endpoint,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL: fmt.Sprintf(
			"%s/%s",
			strings.TrimSuffix(c.RedirectURLBase, "/"),
			callbackPath,
		),
		Scopes: []string{oidc.ScopeOpenID, "profile", "email"},
	}
}

// GetConfigAndVerifierFromEnvironment returns OAuth client configuration and an
// OIDC identity token verifier, all derived from environment variables. Both
// are nil when OIDC is disabled.
func GetConfigAndVerifierFromEnvironment(ctx context.Context) (
	*oauth2.Config,
	*oidc.IDTokenVerifier,
	error,
) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return nil, nil, err
	}
	if err := c.validate(); err != nil {
		return nil, nil, err
	}
	if !c.Enabled {
		return nil, nil, nil // We're not using OIDC
	}

	provider, err := oidc.NewProvider(ctx, c.ProviderURL)
	if err != nil {
		return nil, nil, err
	}
	if provider == nil {
		return nil, nil, errors.New("no OpenID Connect provider was discovered")
	}

	verifier := provider.Verifier(
		&oidc.Config{
			ClientID: c.ClientID,
		},
	)

	return c.oauth2Config(provider.Endpoint()), verifier, nil
}
