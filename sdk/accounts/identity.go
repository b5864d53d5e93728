package accounts

import (
	"context"
	"net/http"

	"github.com/krancour/accounts/sdk/internal/restmachinery"
)

// Identity is the set of claims the identity provider asserted about a
// logged in user.
type Identity struct {
	Subject       string `json:"sub"`
	Name          string `json:"name,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture,omitempty"`
}

// AuthStatus reports whether the caller is authenticated and, if so, as whom.
type AuthStatus struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *Identity `json:"user"`
}

// IdentityClient is the specialized client for inspecting the caller's own
// identity.
type IdentityClient interface {
	// Status returns the caller's authentication status. Calling it also
	// ensures a User exists for an authenticated caller.
	Status(context.Context) (AuthStatus, error)
	// Profile returns the caller's Identity. It fails for unauthenticated
	// callers.
	Profile(context.Context) (Identity, error)
}

type identityClient struct {
	*restmachinery.BaseClient
}

// NewIdentityClient returns a specialized client for inspecting the caller's
// own identity.
func NewIdentityClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) IdentityClient {
	return &identityClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, apiToken, allowInsecure),
	}
}

func (i *identityClient) Status(ctx context.Context) (AuthStatus, error) {
	status := AuthStatus{}
	if err := i.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "",
			AuthHeaders: i.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &status,
		},
	); err != nil {
		return AuthStatus{}, err
	}
	return status, nil
}

func (i *identityClient) Profile(ctx context.Context) (Identity, error) {
	identity := Identity{}
	if err := i.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "api/private/profile",
			AuthHeaders: i.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &identity,
		},
	); err != nil {
		return Identity{}, err
	}
	return identity, nil
}
