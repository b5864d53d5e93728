package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDeletionRequestMarshalJSON(t *testing.T) {
	request := DeletionRequest{
		ID:             primitive.NewObjectID(),
		UserID:         "auth0|tony",
		DeletionReason: "retiring",
		CreatedAt:      time.Now().UTC(),
	}
	jsonBytes, err := json.Marshal(request)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(jsonBytes, &body))
	require.Equal(t, request.ID.Hex(), body["id"])
	require.Equal(t, false, body["treated"])
	require.Nil(t, body["treatedAt"])
}

func TestDeletionRequestsServiceSubmit(t *testing.T) {
	testCases := []struct {
		name       string
		userID     string
		reason     string
		store      DeletionRequestsStore
		assertions func(t *testing.T, err error)
	}{
		{
			name:   "missing user ID",
			reason: "retiring",
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(
					t,
					"userId and deletionReason are required fields.",
					err.(*meta.ErrBadRequest).Reason,
				)
			},
		},
		{
			name:   "missing reason",
			userID: "auth0|tony",
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
			},
		},
		{
			name:   "request already exists",
			userID: "auth0|tony",
			reason: "retiring",
			store: &mockDeletionRequestsStore{
				CreateFn: func(context.Context, DeletionRequest) error {
					return &meta.ErrConflict{Field: "userId", Reason: "exists"}
				},
			},
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrConflict{}, errorsCause(err))
			},
		},
		{
			name:   "success",
			userID: "auth0|tony",
			reason: "retiring",
			store: &mockDeletionRequestsStore{
				CreateFn: func(_ context.Context, request DeletionRequest) error {
					require.False(t, request.ID.IsZero())
					require.Equal(t, "auth0|tony", request.UserID)
					require.Equal(t, "retiring", request.DeletionReason)
					require.False(t, request.Treated)
					require.Nil(t, request.TreatedAt)
					require.False(t, request.CreatedAt.IsZero())
					return nil
				},
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewDeletionRequestsService(testCase.store)
			err := svc.Submit(context.Background(), testCase.userID, testCase.reason)
			testCase.assertions(t, err)
		})
	}
}

func TestDeletionRequestsServiceCheckExists(t *testing.T) {
	testCases := []struct {
		name     string
		exists   bool
		err      error
		expected bool
	}{
		{
			name:     "store error is reported as false",
			exists:   true,
			err:      errors.New("store error"),
			expected: false,
		},
		{
			name:     "does not exist",
			expected: false,
		},
		{
			name:     "exists",
			exists:   true,
			expected: true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewDeletionRequestsService(
				&mockDeletionRequestsStore{
					ExistsFn: func(context.Context, string) (bool, error) {
						return testCase.exists, testCase.err
					},
				},
			)
			require.Equal(
				t,
				testCase.expected,
				svc.CheckExists(context.Background(), "auth0|tony"),
			)
		})
	}
}

func TestDeletionRequestsServiceMarkTreated(t *testing.T) {
	earlier := time.Now().UTC().Add(-time.Hour)
	testCases := []struct {
		name       string
		store      DeletionRequestsStore
		assertions func(t *testing.T, err error)
	}{
		{
			name: "not found",
			store: &mockDeletionRequestsStore{
				GetFn: func(context.Context, string) (DeletionRequest, error) {
					return DeletionRequest{},
						&meta.ErrNotFound{Type: "Account deletion request"}
				},
			},
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrNotFound{}, errorsCause(err))
			},
		},
		{
			name: "update error",
			store: &mockDeletionRequestsStore{
				GetFn: func(context.Context, string) (DeletionRequest, error) {
					return DeletionRequest{}, nil
				},
				UpdateFn: func(context.Context, DeletionRequest) error {
					return errors.New("store error")
				},
			},
			assertions: func(t *testing.T, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "store error")
			},
		},
		{
			name: "already treated is stamped again",
			store: &mockDeletionRequestsStore{
				GetFn: func(context.Context, string) (DeletionRequest, error) {
					return DeletionRequest{
						UserID:    "auth0|tony",
						Treated:   true,
						TreatedAt: &earlier,
					}, nil
				},
				UpdateFn: func(_ context.Context, request DeletionRequest) error {
					require.True(t, request.Treated)
					require.NotNil(t, request.TreatedAt)
					require.True(t, request.TreatedAt.After(earlier))
					return nil
				},
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewDeletionRequestsService(testCase.store)
			err := svc.MarkTreated(
				context.Background(),
				"5f1e9b7c2a3d4e5f6a7b8c9d",
			)
			testCase.assertions(t, err)
		})
	}
}

func TestDeletionRequestsServiceCancel(t *testing.T) {
	testCases := []struct {
		name       string
		userID     string
		store      DeletionRequestsStore
		assertions func(t *testing.T, err error)
	}{
		{
			name: "missing user ID",
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(
					t,
					"User ID is required.",
					err.(*meta.ErrBadRequest).Reason,
				)
			},
		},
		{
			name:   "store error",
			userID: "auth0|tony",
			store: &mockDeletionRequestsStore{
				DeleteByUserIDFn: func(context.Context, string) error {
					return errors.New("store error")
				},
			},
			assertions: func(t *testing.T, err error) {
				require.Error(t, err)
			},
		},
		{
			name:   "success",
			userID: "auth0|tony",
			store: &mockDeletionRequestsStore{
				DeleteByUserIDFn: func(_ context.Context, userID string) error {
					require.Equal(t, "auth0|tony", userID)
					return nil
				},
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewDeletionRequestsService(testCase.store)
			testCase.assertions(t, svc.Cancel(context.Background(), testCase.userID))
		})
	}
}
