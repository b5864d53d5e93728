package accounts

import (
	"context"
	"log"
	"time"

	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolesProvider is an interface for components that can look up the roles an
// identity provider has assigned to a subject.
type RolesProvider interface {
	// AccessToken returns a token authorizing calls to Roles.
	AccessToken(ctx context.Context) (string, error)
	// Roles returns the names of the roles assigned to the specified subject.
	Roles(ctx context.Context, accessToken string, subject string) ([]string, error)
}

// IdentitySyncService mirrors identities asserted by the identity provider
// into local User records.
type IdentitySyncService interface {
	// Sync creates a User for the provided identity, with the roles the
	// identity provider has assigned to it, unless one already exists. An
	// identity whose email is already used by another User is left alone.
	Sync(ctx context.Context, identity authx.Identity) error
}

type identitySyncService struct {
	usersStore    UsersStore
	rolesProvider RolesProvider
}

// NewIdentitySyncService returns an IdentitySyncService. If rolesProvider is
// nil, identities not yet known locally cannot be synchronized.
func NewIdentitySyncService(
	usersStore UsersStore,
	rolesProvider RolesProvider,
) IdentitySyncService {
	return &identitySyncService{
		usersStore:    usersStore,
		rolesProvider: rolesProvider,
	}
}

func (i *identitySyncService) Sync(
	ctx context.Context,
	identity authx.Identity,
) error {
	_, err := i.usersStore.GetByUserID(ctx, identity.Subject)
	if err == nil {
		return nil
	}
	if _, ok := errors.Cause(err).(*meta.ErrNotFound); !ok {
		return errors.Wrapf(
			err,
			"error retrieving user %q from store",
			identity.Subject,
		)
	}

	var accessToken string
	if i.rolesProvider != nil {
		if accessToken, err = i.rolesProvider.AccessToken(ctx); err != nil {
			log.Println(err)
		}
	}
	if accessToken == "" {
		err = errors.New("Access token not available.")
		log.Println(err)
		return err
	}

	roles, err := i.rolesProvider.Roles(ctx, accessToken, identity.Subject)
	if err != nil {
		return errors.Wrapf(
			err,
			"error fetching roles for user %q",
			identity.Subject,
		)
	}
	if roles == nil {
		roles = []string{}
	}

	now := time.Now().UTC()
	user := User{
		ID:          primitive.NewObjectID(),
		UserID:      identity.Subject,
		Fullname:    identity.Name,
		Email:       identity.Email,
		Roles:       roles,
		CreatedAt:   &now,
		Preferences: []Preference{},
	}
	if err = i.usersStore.Create(ctx, user); err != nil {
		if conflictErr, ok := errors.Cause(err).(*meta.ErrConflict); ok &&
			conflictErr.Field == "email" {
			log.Printf("Duplicate email error: %s", conflictErr.Reason)
			return nil
		}
		return errors.Wrapf(err, "error storing new user %q", user.UserID)
	}
	log.Printf("User %q saved to database", user.UserID)
	return nil
}
