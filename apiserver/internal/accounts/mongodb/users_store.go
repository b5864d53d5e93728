package mongodb

import (
	"context"
	"time"

	"github.com/krancour/accounts/apiserver/internal/accounts"
	libMongo "github.com/krancour/accounts/apiserver/internal/lib/mongodb"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes take the server's default names (email_1, userId_1) so that they
// coincide with indexes that already exist on the collection.
const createIndexTimeout = 5 * time.Second

// usersStore is a MongoDB-based implementation of the accounts.UsersStore
// interface.
type usersStore struct {
	database   *mongo.Database
	collection *mongo.Collection
}

// NewUsersStore returns a MongoDB-based implementation of the
// accounts.UsersStore interface.
func NewUsersStore(database *mongo.Database) (accounts.UsersStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	collection := database.Collection("users")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.M{
					"email": 1,
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.M{
					"userId": 1,
				},
				Options: options.Index().SetUnique(true),
			},
		},
	); err != nil {
		return nil, errors.Wrap(err, "error adding indexes to users collection")
	}
	return &usersStore{
		database:   database,
		collection: collection,
	}, nil
}

func (u *usersStore) Create(ctx context.Context, user accounts.User) error {
	if _, err := u.collection.InsertOne(ctx, user); err != nil {
		if conflictErr := u.conflictError(err, user); conflictErr != nil {
			return conflictErr
		}
		return errors.Wrapf(err, "error inserting new user %q", user.UserID)
	}
	return nil
}

// conflictError returns a *meta.ErrConflict if err was caused by a unique
// index violation. Otherwise it returns nil.
func (u *usersStore) conflictError(err error, user accounts.User) error {
	fields, ok := libMongo.DuplicateKeyFields(err)
	if !ok {
		return nil
	}
	switch {
	case libMongo.HasField(fields, "email"):
		return &meta.ErrConflict{
			Type:   "User",
			ID:     user.UserID,
			Field:  "email",
			Reason: "A user with that email already exists.",
		}
	case libMongo.HasField(fields, "userId"):
		return &meta.ErrConflict{
			Type:   "User",
			ID:     user.UserID,
			Field:  "userId",
			Reason: "A user with that user ID already exists.",
		}
	default:
		return &meta.ErrConflict{
			Type:   "User",
			ID:     user.UserID,
			Reason: "A conflicting user already exists.",
		}
	}
}

func (u *usersStore) Exists(
	ctx context.Context,
	userID string,
	email string,
) (bool, error) {
	count, err := u.collection.CountDocuments(
		ctx,
		bson.M{
			"userId": userID,
			"email":  email,
		},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, errors.Wrapf(err, "error counting users %q", userID)
	}
	return count > 0, nil
}

func (u *usersStore) GetByUserID(
	ctx context.Context,
	userID string,
) (accounts.User, error) {
	user := accounts.User{}
	res := u.collection.FindOne(ctx, bson.M{"userId": userID})
	if res.Err() == mongo.ErrNoDocuments {
		return user, &meta.ErrNotFound{
			Type: "User",
		}
	}
	if res.Err() != nil {
		return user, errors.Wrapf(res.Err(), "error finding user %q", userID)
	}
	if err := res.Decode(&user); err != nil {
		return user, errors.Wrapf(err, "error decoding user %q", userID)
	}
	return user, nil
}

func (u *usersStore) List(ctx context.Context) ([]accounts.User, error) {
	users := []accounts.User{}
	cur, err := u.collection.Find(ctx, bson.M{})
	if err != nil {
		return users, errors.Wrap(err, "error finding users")
	}
	if err := cur.All(ctx, &users); err != nil {
		return users, errors.Wrap(err, "error decoding users")
	}
	return users, nil
}

func (u *usersStore) Update(ctx context.Context, user accounts.User) error {
	res, err := u.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if conflictErr := u.conflictError(err, user); conflictErr != nil {
			return conflictErr
		}
		return errors.Wrapf(err, "error updating user %q", user.UserID)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "User",
		}
	}
	return nil
}

func (u *usersStore) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &meta.ErrBadRequest{
			Reason: "Invalid user ID.",
		}
	}
	if _, err = u.collection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return errors.Wrapf(err, "error deleting user %q", id)
	}
	return nil
}

func (u *usersStore) CheckHealth(ctx context.Context) error {
	return libMongo.CheckHealth(ctx, u.database)
}
