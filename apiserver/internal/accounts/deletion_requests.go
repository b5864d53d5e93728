package accounts

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeletionRequest represents a user's standing request to have their account
// removed. An operator marks it treated once they have acted on it.
type DeletionRequest struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	DeletionReason string             `json:"deletionReason" bson:"deletionReason"`
	Treated        bool               `json:"treated" bson:"treated"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	TreatedAt      *time.Time         `json:"treatedAt" bson:"treatedAt"`
}

// MarshalJSON amends DeletionRequest instances with the string form of their
// ID.
func (d DeletionRequest) MarshalJSON() ([]byte, error) {
	type Alias DeletionRequest
	return json.Marshal(
		struct {
			HexID string `json:"id,omitempty"`
			Alias
		}{
			HexID: hexID(d.ID),
			Alias: (Alias)(d),
		},
	)
}

// DeletionRequestsService is the specialized interface for managing
// DeletionRequests.
type DeletionRequestsService interface {
	// Submit records a new DeletionRequest. Only one DeletionRequest may exist
	// per user.
	Submit(ctx context.Context, userID string, reason string) error
	// CheckExists returns true if a DeletionRequest exists for the specified
	// user. Lookup failures are logged and reported as false.
	CheckExists(ctx context.Context, userID string) bool
	// MarkTreated flags the specified DeletionRequest as treated and stamps it
	// with the current time. Requests already treated are stamped again.
	MarkTreated(ctx context.Context, requestID string) error
	// Cancel deletes any DeletionRequest for the specified user.
	Cancel(ctx context.Context, userID string) error
	// List retrieves every DeletionRequest.
	List(context.Context) ([]DeletionRequest, error)
}

type deletionRequestsService struct {
	deletionRequestsStore DeletionRequestsStore
}

// NewDeletionRequestsService returns a specialized interface for managing
// DeletionRequests.
func NewDeletionRequestsService(
	deletionRequestsStore DeletionRequestsStore,
) DeletionRequestsService {
	return &deletionRequestsService{
		deletionRequestsStore: deletionRequestsStore,
	}
}

func (d *deletionRequestsService) Submit(
	ctx context.Context,
	userID string,
	reason string,
) error {
	if userID == "" || reason == "" {
		return &meta.ErrBadRequest{
			Reason: "userId and deletionReason are required fields.",
		}
	}
	request := DeletionRequest{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		DeletionReason: reason,
		CreatedAt:      time.Now().UTC(),
	}
	if err := d.deletionRequestsStore.Create(ctx, request); err != nil {
		return errors.Wrapf(
			err,
			"error storing account deletion request for user %q",
			userID,
		)
	}
	return nil
}

func (d *deletionRequestsService) CheckExists(
	ctx context.Context,
	userID string,
) bool {
	exists, err := d.deletionRequestsStore.Exists(ctx, userID)
	if err != nil {
		log.Println(
			errors.Wrap(err, "error checking existing deletion request"),
		)
		return false
	}
	return exists
}

func (d *deletionRequestsService) MarkTreated(
	ctx context.Context,
	requestID string,
) error {
	request, err := d.deletionRequestsStore.Get(ctx, requestID)
	if err != nil {
		return errors.Wrapf(
			err,
			"error retrieving account deletion request %q from store",
			requestID,
		)
	}
	now := time.Now().UTC()
	request.Treated = true
	request.TreatedAt = &now
	if err = d.deletionRequestsStore.Update(ctx, request); err != nil {
		return errors.Wrapf(
			err,
			"error updating account deletion request %q in store",
			requestID,
		)
	}
	return nil
}

func (d *deletionRequestsService) Cancel(
	ctx context.Context,
	userID string,
) error {
	if userID == "" {
		return &meta.ErrBadRequest{
			Reason: "User ID is required.",
		}
	}
	if err := d.deletionRequestsStore.DeleteByUserID(ctx, userID); err != nil {
		return errors.Wrapf(
			err,
			"error deleting account deletion request for user %q",
			userID,
		)
	}
	return nil
}

func (d *deletionRequestsService) List(
	ctx context.Context,
) ([]DeletionRequest, error) {
	requests, err := d.deletionRequestsStore.List(ctx)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"error retrieving account deletion requests from store",
		)
	}
	return requests, nil
}

// DeletionRequestsStore is an interface for components that implement
// DeletionRequest persistence concerns.
type DeletionRequestsStore interface {
	// Create stores the provided DeletionRequest. Implementations MUST return
	// a *meta.ErrConflict error if a DeletionRequest for the same user already
	// exists.
	Create(context.Context, DeletionRequest) error
	// Exists returns true if a DeletionRequest exists for the specified user.
	Exists(ctx context.Context, userID string) (bool, error)
	// Get retrieves a DeletionRequest by ID. Implementations MUST return a
	// *meta.ErrNotFound error if no such DeletionRequest exists or if the ID is
	// malformed.
	Get(ctx context.Context, id string) (DeletionRequest, error)
	// Update replaces the stored DeletionRequest having the same ID as the
	// provided DeletionRequest.
	Update(context.Context, DeletionRequest) error
	// DeleteByUserID deletes any DeletionRequest for the specified user.
	// Deleting nothing is not an error.
	DeleteByUserID(ctx context.Context, userID string) error
	// List retrieves every DeletionRequest.
	List(context.Context) ([]DeletionRequest, error)
}
