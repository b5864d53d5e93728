package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
)

type authStatus struct {
	IsAuthenticated bool            `json:"isAuthenticated"`
	User            *authx.Identity `json:"user"`
}

type identityEndpoints struct {
	*restmachinery.BaseEndpoints
	identitySyncFilter restmachinery.Filter
}

// NewIdentityEndpoints returns the endpoints that report the caller's
// identity. The root endpoint is the only one that applies
// identitySyncFilter.
func NewIdentityEndpoints(
	baseEndpoints *restmachinery.BaseEndpoints,
	identitySyncFilter restmachinery.Filter,
) restmachinery.Endpoints {
	return &identityEndpoints{
		BaseEndpoints:      baseEndpoints,
		identitySyncFilter: identitySyncFilter,
	}
}

func (i *identityEndpoints) Register(router *mux.Router) {
	// Authentication status
	router.HandleFunc(
		"/",
		i.SessionAuthFilter.Decorate(i.identitySyncFilter.Decorate(i.status)),
	).Methods(http.MethodGet)

	// Profile of the logged in user
	router.HandleFunc(
		"/api/private/profile",
		i.SessionAuthFilter.Decorate(i.RequireAuthFilter.Decorate(i.profile)),
	).Methods(http.MethodGet)
}

func (i *identityEndpoints) status(w http.ResponseWriter, r *http.Request) {
	i.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				identity, ok := authx.IdentityFromContext(r.Context())
				if !ok {
					return authStatus{}, nil
				}
				return authStatus{
					IsAuthenticated: true,
					User:            &identity,
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (i *identityEndpoints) profile(w http.ResponseWriter, r *http.Request) {
	i.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				identity, _ := authx.IdentityFromContext(r.Context())
				return identity, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}
