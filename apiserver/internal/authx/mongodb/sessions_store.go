package mongodb

import (
	"context"
	"time"

	"github.com/krancour/accounts/apiserver/internal/authx"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const createIndexTimeout = 5 * time.Second

// sessionsStore is a MongoDB-based implementation of the authx.SessionsStore
// interface.
type sessionsStore struct {
	collection *mongo.Collection
}

// NewSessionsStore returns a MongoDB-based implementation of the
// authx.SessionsStore interface. Expired sessions are reaped by MongoDB
// itself.
func NewSessionsStore(database *mongo.Database) (authx.SessionsStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	unique := true
	var expireAfterSeconds int32
	collection := database.Collection("sessions")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.M{
					"id": 1,
				},
				Options: &options.IndexOptions{
					Unique: &unique,
				},
			},
			// Fast lookup by OAuth2 state during the callback
			{
				Keys: bson.M{
					"hashedOAuth2State": 1,
				},
				Options: &options.IndexOptions{
					Unique: &unique,
				},
			},
			// Fast lookup by token
			{
				Keys: bson.M{
					"hashedToken": 1,
				},
				Options: &options.IndexOptions{
					Unique: &unique,
				},
			},
			{
				Keys: bson.M{
					"expires": 1,
				},
				Options: &options.IndexOptions{
					ExpireAfterSeconds: &expireAfterSeconds,
				},
			},
		},
	); err != nil {
		return nil, errors.Wrap(err, "error adding indexes to sessions collection")
	}
	return &sessionsStore{
		collection: collection,
	}, nil
}

func (s *sessionsStore) Create(
	ctx context.Context,
	session authx.Session,
) error {
	if _, err := s.collection.InsertOne(ctx, session); err != nil {
		return errors.Wrapf(err, "error inserting new session %q", session.ID)
	}
	return nil
}

func (s *sessionsStore) GetByHashedOAuth2State(
	ctx context.Context,
	hashedOAuth2State string,
) (authx.Session, error) {
	return s.findOne(
		ctx,
		bson.M{"hashedOAuth2State": hashedOAuth2State},
		"error finding session by hashed OAuth2 state",
	)
}

func (s *sessionsStore) GetByHashedToken(
	ctx context.Context,
	hashedToken string,
) (authx.Session, error) {
	return s.findOne(
		ctx,
		bson.M{"hashedToken": hashedToken},
		"error finding session by hashed token",
	)
}

func (s *sessionsStore) findOne(
	ctx context.Context,
	criteria bson.M,
	errMsg string,
) (authx.Session, error) {
	session := authx.Session{}
	res := s.collection.FindOne(ctx, criteria)
	if res.Err() == mongo.ErrNoDocuments {
		return session, &meta.ErrNotFound{
			Type: "Session",
		}
	}
	if res.Err() != nil {
		return session, errors.Wrap(res.Err(), errMsg)
	}
	if err := res.Decode(&session); err != nil {
		return session, errors.Wrap(err, "error decoding session")
	}
	return session, nil
}

func (s *sessionsStore) Authenticate(
	ctx context.Context,
	sessionID string,
	identity authx.Identity,
	expires time.Time,
) error {
	res, err := s.collection.UpdateOne(
		ctx,
		bson.M{
			"id": sessionID,
		},
		bson.M{
			"$set": bson.M{
				"identity":      identity,
				"authenticated": time.Now().UTC(),
				"expires":       expires,
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating session %q", sessionID)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Session",
			ID:   sessionID,
		}
	}
	return nil
}

func (s *sessionsStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrapf(err, "error deleting session %q", id)
	}
	if res.DeletedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Session",
			ID:   id,
		}
	}
	return nil
}
