package authx

import "context"

// Identity is the set of claims asserted about an end user by the OpenID
// Connect provider once that user has logged in.
type Identity struct {
	// Subject is the provider's stable, unique identifier for the user.
	Subject       string `json:"sub" bson:"sub"`
	Name          string `json:"name,omitempty" bson:"name,omitempty"`
	Nickname      string `json:"nickname,omitempty" bson:"nickname,omitempty"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	EmailVerified bool   `json:"email_verified" bson:"emailVerified"`
	Picture       string `json:"picture,omitempty" bson:"picture,omitempty"`
}

type identityContextKey struct{}

type sessionIDContextKey struct{}

// ContextWithIdentity returns a copy of the provided context carrying the
// provided Identity.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts an Identity from the provided context. The
// second return value is false if the context carries no Identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// ContextWithSessionID returns a copy of the provided context carrying the ID
// of the session that authenticated the request.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey{}, sessionID)
}

// SessionIDFromContext extracts a session ID from the provided context,
// returning an empty string if none is present.
func SessionIDFromContext(ctx context.Context) string {
	sessionID := ctx.Value(sessionIDContextKey{})
	if sessionID == nil {
		return ""
	}
	return sessionID.(string)
}
