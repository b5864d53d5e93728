package auth0

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const requestTimeout = 10 * time.Second

// Client is an Auth0 Management API client. It fetches the role assignments of
// users on behalf of the API server.
type Client interface {
	// AccessToken returns a Management API access token, obtained using the
	// client credentials grant and reused until it expires.
	AccessToken(ctx context.Context) (string, error)
	// Roles returns the names of the roles assigned to the specified subject.
	Roles(ctx context.Context, accessToken string, subject string) ([]string, error)
}

type client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// NewClient returns an Auth0 Management API client.
func NewClient(config Config) Client {
	httpClient := &http.Client{Timeout: requestTimeout}
	ccConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/oauth/token", config.baseURL()),
		EndpointParams: url.Values{
			"audience": []string{config.audience()},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}
	// The token source must outlive any single request, so it is bound to a
	// background context that only carries the HTTP client.
	tokenCtx := context.WithValue(
		context.Background(),
		oauth2.HTTPClient,
		httpClient,
	)
	return &client{
		baseURL:    config.baseURL(),
		httpClient: httpClient,
		tokenSource: oauth2.ReuseTokenSource(
			nil,
			ccConfig.TokenSource(tokenCtx),
		),
	}
}

func (c *client) AccessToken(context.Context) (string, error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		return "", errors.Wrap(err, "error fetching Auth0 access token")
	}
	return token.AccessToken, nil
}

func (c *client) Roles(
	ctx context.Context,
	accessToken string,
	subject string,
) ([]string, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf(
			"%s/api/v2/users/%s/roles",
			c.baseURL,
			url.PathEscape(subject),
		),
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating roles request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching roles for %q", subject)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf(
			"received %d from Auth0 while fetching roles for %q",
			resp.StatusCode,
			subject,
		)
	}
	roles := []struct {
		Name string `json:"name"`
	}{}
	if err = json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		return nil, errors.Wrap(err, "error decoding roles response")
	}
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = role.Name
	}
	return roleNames, nil
}
