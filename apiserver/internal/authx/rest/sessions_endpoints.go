package rest

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
)

// SessionsEndpointsConfig represents configuration for the browser login
// endpoints.
type SessionsEndpointsConfig struct {
	// CookieSecure marks the session cookie as HTTPS-only.
	CookieSecure bool
	// CookieTTL bounds the lifetime of the session cookie.
	CookieTTL time.Duration
	// LogoutURL, if non-empty, is where browsers are sent after their local
	// session has been deleted so the identity provider can end its own
	// session. Otherwise they are sent to "/".
	LogoutURL string
}

type sessionsEndpoints struct {
	*restmachinery.BaseEndpoints
	config  SessionsEndpointsConfig
	service authx.SessionsService
}

// NewSessionsEndpoints returns the endpoints that drive the OpenID Connect
// login flow for browsers.
func NewSessionsEndpoints(
	baseEndpoints *restmachinery.BaseEndpoints,
	config SessionsEndpointsConfig,
	service authx.SessionsService,
) restmachinery.Endpoints {
	return &sessionsEndpoints{
		BaseEndpoints: baseEndpoints,
		config:        config,
		service:       service,
	}
}

func (s *sessionsEndpoints) Register(router *mux.Router) {
	// Start login
	router.HandleFunc(
		"/login",
		s.login, // No filters applied to this request
	).Methods(http.MethodGet)

	// OIDC callback
	router.HandleFunc(
		"/callback",
		s.callback, // No filters applied to this request
	).Methods(http.MethodGet)

	// Logout
	router.HandleFunc(
		"/logout",
		s.SessionAuthFilter.Decorate(s.logout),
	).Methods(http.MethodGet)
}

func (s *sessionsEndpoints) login(w http.ResponseWriter, r *http.Request) {
	authDetails, err := s.service.CreateUserSession(
		r.Context(),
		safeReturnTo(r.URL.Query().Get("returnTo")),
	)
	if err != nil {
		s.WriteAPIError(w, err, http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, authDetails.Token, s.config.CookieTTL)
	http.Redirect(w, r, authDetails.AuthURL, http.StatusFound)
}

func (s *sessionsEndpoints) callback(w http.ResponseWriter, r *http.Request) {
	oauth2State := r.URL.Query().Get("state")
	oidcCode := r.URL.Query().Get("code")
	if oauth2State == "" || oidcCode == "" {
		s.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&meta.ErrBadRequest{
				Reason: `The OpenID Connect authentication completion request ` +
					`lacked one or both of the "state" and "code" query parameters.`,
			},
		)
		return
	}
	var token string
	if cookie, err := r.Cookie(authx.SessionCookieName); err == nil {
		token = cookie.Value
	}
	session, err := s.service.Authenticate(
		r.Context(),
		oauth2State,
		token,
		oidcCode,
	)
	if err != nil {
		s.WriteAPIError(
			w,
			errors.Wrap(err, "error completing OpenID Connect authentication"),
			http.StatusInternalServerError,
		)
		return
	}
	http.Redirect(w, r, safeReturnTo(session.ReturnTo), http.StatusFound)
}

func (s *sessionsEndpoints) logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := authx.SessionIDFromContext(r.Context()); sessionID != "" {
		if err := s.service.Delete(r.Context(), sessionID); err != nil {
			if _, ok := errors.Cause(err).(*meta.ErrNotFound); !ok {
				log.Println(err)
			}
		}
	}
	s.setSessionCookie(w, "", -1)
	redirectURL := s.config.LogoutURL
	if redirectURL == "" {
		redirectURL = "/"
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// setSessionCookie sets the session cookie. A negative ttl deletes it.
func (s *sessionsEndpoints) setSessionCookie(
	w http.ResponseWriter,
	token string,
	ttl time.Duration,
) {
	cookie := &http.Cookie{
		Name:     authx.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

// safeReturnTo only permits local paths so the login flow can't be used as an
// open redirect.
func safeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") ||
		strings.HasPrefix(returnTo, "//") ||
		strings.HasPrefix(returnTo, "/\\") {
		return "/"
	}
	return returnTo
}
