package authn

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
)

// FindSessionFn is the signature of a function that retrieves an
// authenticated, unexpired session by its token.
type FindSessionFn func(ctx context.Context, token string) (authx.Session, error)

// SyncIdentityFn is the signature of a function that reconciles an identity
// with locally stored records.
type SyncIdentityFn func(ctx context.Context, identity authx.Identity) error

type sessionAuthFilter struct {
	findSession FindSessionFn
}

// NewSessionAuthFilter returns a restmachinery.Filter that establishes the
// caller's identity from a session token found in the session cookie or in a
// bearer token "Authorization" header. Requests without a valid session are
// passed through anonymously. Only failures to look up a session are
// reported.
func NewSessionAuthFilter(findSession FindSessionFn) restmachinery.Filter {
	return &sessionAuthFilter{
		findSession: findSession,
	}
}

func (s *sessionAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			handle(w, r)
			return
		}
		session, err := s.findSession(r.Context(), token)
		if err != nil {
			if _, ok := errors.Cause(err).(*meta.ErrAuthentication); ok {
				handle(w, r)
				return
			}
			log.Println(err)
			writeResponse(w, http.StatusInternalServerError, &meta.ErrInternalServer{})
			return
		}
		if session.Identity == nil {
			handle(w, r)
			return
		}
		ctx := authx.ContextWithIdentity(r.Context(), *session.Identity)
		ctx = authx.ContextWithSessionID(ctx, session.ID)
		handle(w, r.WithContext(ctx))
	}
}

// tokenFromRequest prefers a bearer token over the session cookie.
func tokenFromRequest(r *http.Request) string {
	if headerValue := r.Header.Get("Authorization"); headerValue != "" {
		headerValueParts := strings.SplitN(headerValue, " ", 2)
		if len(headerValueParts) == 2 && headerValueParts[0] == "Bearer" {
			return strings.TrimSpace(headerValueParts[1])
		}
	}
	if cookie, err := r.Cookie(authx.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

type requireIdentityFilter struct{}

// NewRequireIdentityFilter returns a restmachinery.Filter that rejects any
// request whose context does not carry an identity.
func NewRequireIdentityFilter() restmachinery.Filter {
	return &requireIdentityFilter{}
}

func (requireIdentityFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authx.IdentityFromContext(r.Context()); !ok {
			writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: "This resource requires a logged in user.",
				},
			)
			return
		}
		handle(w, r)
	}
}

type identitySyncFilter struct {
	syncIdentity SyncIdentityFn
}

// NewIdentitySyncFilter returns a restmachinery.Filter that reconciles the
// identity carried by the request context, if any, before handling the
// request.
func NewIdentitySyncFilter(syncIdentity SyncIdentityFn) restmachinery.Filter {
	return &identitySyncFilter{
		syncIdentity: syncIdentity,
	}
}

func (i *identitySyncFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authx.IdentityFromContext(r.Context())
		if !ok {
			handle(w, r)
			return
		}
		if err := i.syncIdentity(r.Context(), identity); err != nil {
			log.Println(err)
			writeResponse(
				w,
				http.StatusInternalServerError,
				&meta.ErrGeneric{
					Message: errors.Cause(err).Error(),
				},
			)
			return
		}
		handle(w, r)
	}
}

func writeResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, err := json.Marshal(response)
	if err != nil {
		log.Println(errors.Wrap(err, "error marshaling response body"))
	}
	if _, err := w.Write(responseBody); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}
