package authx

import (
	"context"
	"time"

	"github.com/coreos/go-oidc"
	"github.com/krancour/accounts/apiserver/internal/lib/crypto"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/oauth2"
)

// SessionCookieName is the name of the HttpOnly cookie that carries a
// browser's session token.
const SessionCookieName = "accounts_session"

// loginTimeout bounds how long a user may take to complete the OpenID Connect
// flow after it has been started.
const loginTimeout = 10 * time.Minute

// Session encapsulates details of a login session. Only hashes of the OAuth2
// state and of the session token are ever stored.
type Session struct {
	ID                string     `json:"id" bson:"id"`
	HashedOAuth2State string     `json:"hashedOAuth2State" bson:"hashedOAuth2State"`
	HashedToken       string     `json:"hashedToken" bson:"hashedToken"`
	ReturnTo          string     `json:"returnTo,omitempty" bson:"returnTo,omitempty"`
	Identity          *Identity  `json:"identity,omitempty" bson:"identity,omitempty"`
	Created           *time.Time `json:"created,omitempty" bson:"created,omitempty"`
	Authenticated     *time.Time `json:"authenticated,omitempty" bson:"authenticated,omitempty"`
	Expires           *time.Time `json:"expires,omitempty" bson:"expires,omitempty"`
}

// OIDCAuthDetails encapsulates all information required for a client
// to complete an OpenID Connect login.
type OIDCAuthDetails struct {
	// OAuth2State is an opaque token issued by the API server that correlates
	// the provider's callback with the session that started the login.
	OAuth2State string `json:"oauth2State"`
	// AuthURL is the URL the user's browser must visit to log in.
	AuthURL string `json:"authURL"`
	// Token is the session token the browser presents once authenticated.
	Token string `json:"token"`
}

// SessionsService is the specialized interface for managing login sessions.
type SessionsService interface {
	// CreateUserSession creates a new, not yet authenticated session and
	// returns the details needed to start an OpenID Connect login.
	CreateUserSession(
		ctx context.Context,
		returnTo string,
	) (OIDCAuthDetails, error)
	// Authenticate completes the OpenID Connect login started for the session
	// identified by oauth2State. The session token must be the one issued for
	// that same session.
	Authenticate(
		ctx context.Context,
		oauth2State string,
		token string,
		oidcCode string,
	) (Session, error)
	// GetByToken retrieves an authenticated, unexpired session by token.
	GetByToken(ctx context.Context, token string) (Session, error)
	// Delete deletes the specified session.
	Delete(ctx context.Context, id string) error
}

type sessionsService struct {
	sessionsStore SessionsStore
	oauth2Config  *oauth2.Config
	ttl           time.Duration
	exchangeCode  func(ctx context.Context, oidcCode string) (*oauth2.Token, error)
	verifyIDToken func(ctx context.Context, rawIDToken string) (Identity, error)
}

// NewSessionsService returns a specialized interface for managing login
// sessions. OpenID Connect is considered disabled when either oauth2Config or
// oidcTokenVerifier is nil.
func NewSessionsService(
	sessionsStore SessionsStore,
	oauth2Config *oauth2.Config,
	oidcTokenVerifier *oidc.IDTokenVerifier,
	ttl time.Duration,
) SessionsService {
	s := &sessionsService{
		sessionsStore: sessionsStore,
		ttl:           ttl,
	}
	if oauth2Config != nil && oidcTokenVerifier != nil {
		s.oauth2Config = oauth2Config
		s.exchangeCode = func(
			ctx context.Context,
			oidcCode string,
		) (*oauth2.Token, error) {
			return oauth2Config.Exchange(ctx, oidcCode)
		}
		s.verifyIDToken = func(
			ctx context.Context,
			rawIDToken string,
		) (Identity, error) {
			identity := Identity{}
			idToken, err := oidcTokenVerifier.Verify(ctx, rawIDToken)
			if err != nil {
				return identity,
					errors.Wrap(err, "error verifying OpenID Connect identity token")
			}
			if err = idToken.Claims(&identity); err != nil {
				return identity, errors.Wrap(
					err,
					"error decoding OpenID Connect identity token claims",
				)
			}
			return identity, nil
		}
	}
	return s
}

func (s *sessionsService) oidcEnabled() bool {
	return s.oauth2Config != nil
}

func (s *sessionsService) CreateUserSession(
	ctx context.Context,
	returnTo string,
) (OIDCAuthDetails, error) {
	if !s.oidcEnabled() {
		return OIDCAuthDetails{}, &meta.ErrNotSupported{
			Details: "Authentication using OpenID Connect is not supported by " +
				"this server.",
		}
	}
	oauth2State := crypto.NewToken(30)
	token := crypto.NewToken(256)
	now := time.Now().UTC()
	expires := now.Add(loginTimeout)
	session := Session{
		ID:                uuid.NewV4().String(),
		HashedOAuth2State: crypto.ShortSHA("", oauth2State),
		HashedToken:       crypto.ShortSHA("", token),
		ReturnTo:          returnTo,
		Created:           &now,
		Expires:           &expires,
	}
	if err := s.sessionsStore.Create(ctx, session); err != nil {
		return OIDCAuthDetails{}, errors.Wrapf(
			err,
			"error storing new user session %q",
			session.ID,
		)
	}
	return OIDCAuthDetails{
		OAuth2State: oauth2State,
		AuthURL:     s.oauth2Config.AuthCodeURL(oauth2State),
		Token:       token,
	}, nil
}

func (s *sessionsService) Authenticate(
	ctx context.Context,
	oauth2State string,
	token string,
	oidcCode string,
) (Session, error) {
	if !s.oidcEnabled() {
		return Session{}, &meta.ErrNotSupported{
			Details: "Authentication using OpenID Connect is not supported by " +
				"this server.",
		}
	}
	session, err := s.sessionsStore.GetByHashedOAuth2State(
		ctx,
		crypto.ShortSHA("", oauth2State),
	)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			return session, &meta.ErrAuthentication{
				Reason: "No login is in progress for the supplied OAuth2 state.",
			}
		}
		return session, errors.Wrap(
			err,
			"error retrieving session from store by hashed OAuth2 state",
		)
	}
	if token == "" || crypto.ShortSHA("", token) != session.HashedToken {
		return session, &meta.ErrAuthentication{
			Reason: "The login was not started by this client.",
		}
	}
	if session.Expires != nil && time.Now().After(*session.Expires) {
		return session, &meta.ErrAuthentication{
			Reason: "The login has timed out. Please log in again.",
		}
	}
	oauth2Token, err := s.exchangeCode(ctx, oidcCode)
	if err != nil {
		return session, errors.Wrap(
			err,
			"error exchanging OpenID Connect code for OAuth2 token",
		)
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return session, errors.New(
			"OAuth2 token, did not include an OpenID Connect identity token",
		)
	}
	identity, err := s.verifyIDToken(ctx, rawIDToken)
	if err != nil {
		return session, err
	}
	now := time.Now().UTC()
	expires := now.Add(s.ttl)
	if err = s.sessionsStore.Authenticate(
		ctx,
		session.ID,
		identity,
		expires,
	); err != nil {
		return session, errors.Wrapf(
			err,
			"error storing authentication details for session %q",
			session.ID,
		)
	}
	session.Identity = &identity
	session.Authenticated = &now
	session.Expires = &expires
	return session, nil
}

func (s *sessionsService) GetByToken(
	ctx context.Context,
	token string,
) (Session, error) {
	session, err := s.sessionsStore.GetByHashedToken(
		ctx,
		crypto.ShortSHA("", token),
	)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			return session, &meta.ErrAuthentication{
				Reason: "Session not found. Please log in again.",
			}
		}
		return session, errors.Wrap(
			err,
			"error retrieving session from store by hashed token",
		)
	}
	if session.Authenticated == nil || session.Identity == nil {
		return session, &meta.ErrAuthentication{
			Reason: "Supplied token has not been authenticated. Please log " +
				"in again.",
		}
	}
	if session.Expires != nil && time.Now().After(*session.Expires) {
		return session, &meta.ErrAuthentication{
			Reason: "Supplied token has expired. Please log in again.",
		}
	}
	return session, nil
}

func (s *sessionsService) Delete(ctx context.Context, id string) error {
	if err := s.sessionsStore.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "error removing session %q from store", id)
	}
	return nil
}

// SessionsStore is an interface for components that implement Session
// persistence concerns.
type SessionsStore interface {
	// Create stores the provided Session.
	Create(context.Context, Session) error
	// GetByHashedOAuth2State returns a Session having the provided hashed
	// OAuth2 state. If no such Session exists, implementations MUST return a
	// *meta.ErrNotFound error.
	GetByHashedOAuth2State(context.Context, string) (Session, error)
	// GetByHashedToken returns a Session having the provided hashed token. If
	// no such Session exists, implementations MUST return a *meta.ErrNotFound
	// error.
	GetByHashedToken(context.Context, string) (Session, error)
	// Authenticate records the provided Identity against the specified Session
	// and extends its expiry.
	Authenticate(
		ctx context.Context,
		sessionID string,
		identity Identity,
		expires time.Time,
	) error
	// Delete deletes the specified Session. If no such Session exists,
	// implementations MUST return a *meta.ErrNotFound error.
	Delete(ctx context.Context, id string) error
}
