package mongodb

import (
	"context"

	"github.com/krancour/accounts/apiserver/internal/accounts"
	libMongo "github.com/krancour/accounts/apiserver/internal/lib/mongodb"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// deletionRequestsStore is a MongoDB-based implementation of the
// accounts.DeletionRequestsStore interface.
type deletionRequestsStore struct {
	collection *mongo.Collection
}

// NewDeletionRequestsStore returns a MongoDB-based implementation of the
// accounts.DeletionRequestsStore interface.
func NewDeletionRequestsStore(
	database *mongo.Database,
) (accounts.DeletionRequestsStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	collection := database.Collection("accountdeletionrequests")
	if _, err := collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.M{
				"userId": 1,
			},
			Options: options.Index().SetUnique(true),
		},
	); err != nil {
		return nil, errors.Wrap(
			err,
			"error adding indexes to account deletion requests collection",
		)
	}
	return &deletionRequestsStore{
		collection: collection,
	}, nil
}

func (d *deletionRequestsStore) Create(
	ctx context.Context,
	request accounts.DeletionRequest,
) error {
	if _, err := d.collection.InsertOne(ctx, request); err != nil {
		if _, ok := libMongo.DuplicateKeyFields(err); ok {
			return &meta.ErrConflict{
				Type:   "Account deletion request",
				ID:     request.UserID,
				Field:  "userId",
				Reason: "An account deletion request already exists for this user.",
			}
		}
		return errors.Wrapf(
			err,
			"error inserting account deletion request for user %q",
			request.UserID,
		)
	}
	return nil
}

func (d *deletionRequestsStore) Exists(
	ctx context.Context,
	userID string,
) (bool, error) {
	count, err := d.collection.CountDocuments(
		ctx,
		bson.M{"userId": userID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, errors.Wrapf(
			err,
			"error counting account deletion requests for user %q",
			userID,
		)
	}
	return count > 0, nil
}

func (d *deletionRequestsStore) Get(
	ctx context.Context,
	id string,
) (accounts.DeletionRequest, error) {
	request := accounts.DeletionRequest{}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return request, &meta.ErrNotFound{
			Type: "Account deletion request",
		}
	}
	res := d.collection.FindOne(ctx, bson.M{"_id": objectID})
	if res.Err() == mongo.ErrNoDocuments {
		return request, &meta.ErrNotFound{
			Type: "Account deletion request",
		}
	}
	if res.Err() != nil {
		return request, errors.Wrapf(
			res.Err(),
			"error finding account deletion request %q",
			id,
		)
	}
	if err = res.Decode(&request); err != nil {
		return request, errors.Wrapf(
			err,
			"error decoding account deletion request %q",
			id,
		)
	}
	return request, nil
}

func (d *deletionRequestsStore) Update(
	ctx context.Context,
	request accounts.DeletionRequest,
) error {
	res, err := d.collection.ReplaceOne(ctx, bson.M{"_id": request.ID}, request)
	if err != nil {
		return errors.Wrapf(
			err,
			"error updating account deletion request %q",
			request.ID.Hex(),
		)
	}
	if res.MatchedCount == 0 {
		return &meta.ErrNotFound{
			Type: "Account deletion request",
		}
	}
	return nil
}

func (d *deletionRequestsStore) DeleteByUserID(
	ctx context.Context,
	userID string,
) error {
	if _, err := d.collection.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return errors.Wrapf(
			err,
			"error deleting account deletion request for user %q",
			userID,
		)
	}
	return nil
}

func (d *deletionRequestsStore) List(
	ctx context.Context,
) ([]accounts.DeletionRequest, error) {
	requests := []accounts.DeletionRequest{}
	cur, err := d.collection.Find(ctx, bson.M{})
	if err != nil {
		return requests, errors.Wrap(err, "error finding account deletion requests")
	}
	if err := cur.All(ctx, &requests); err != nil {
		return requests,
			errors.Wrap(err, "error decoding account deletion requests")
	}
	return requests, nil
}
