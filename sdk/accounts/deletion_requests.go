package accounts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/krancour/accounts/sdk/internal/restmachinery"
)

// DeletionRequest represents a User's request to have their account deleted.
type DeletionRequest struct {
	ID             string     `json:"id,omitempty"`
	UserID         string     `json:"userId"`
	DeletionReason string     `json:"deletionReason"`
	Treated        bool       `json:"treated"`
	CreatedAt      time.Time  `json:"createdAt"`
	TreatedAt      *time.Time `json:"treatedAt"`
}

// DeletionRequestsClient is the specialized client for managing account
// deletion requests with the Accounts API.
type DeletionRequestsClient interface {
	// Submit records a request to delete the specified User's account.
	Submit(ctx context.Context, userID string, reason string) error
	// CheckExists returns true if the specified User has a pending deletion
	// request.
	CheckExists(ctx context.Context, userID string) (bool, error)
	// MarkTreated marks the specified deletion request as treated.
	MarkTreated(ctx context.Context, requestID string) error
	// Cancel withdraws the specified User's deletion request.
	Cancel(ctx context.Context, userID string) error
	// List returns every deletion request.
	List(context.Context) ([]DeletionRequest, error)
}

type deletionRequestsClient struct {
	*restmachinery.BaseClient
}

// NewDeletionRequestsClient returns a specialized client for managing account
// deletion requests.
func NewDeletionRequestsClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) DeletionRequestsClient {
	return &deletionRequestsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, apiToken, allowInsecure),
	}
}

func (d *deletionRequestsClient) Submit(
	ctx context.Context,
	userID string,
	reason string,
) error {
	return d.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "account-delete/request",
			AuthHeaders: d.BearerTokenAuthHeaders(),
			ReqBodyObj: struct {
				UserID         string `json:"userId"`
				DeletionReason string `json:"deletionReason"`
			}{
				UserID:         userID,
				DeletionReason: reason,
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsClient) CheckExists(
	ctx context.Context,
	userID string,
) (bool, error) {
	resp := struct {
		Exists bool `json:"exists"`
	}{}
	if err := d.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path: fmt.Sprintf(
				"account-delete/check-deletion-request/%s",
				url.PathEscape(userID),
			),
			AuthHeaders: d.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (d *deletionRequestsClient) MarkTreated(
	ctx context.Context,
	requestID string,
) error {
	return d.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"account-delete/mark-as-treated/%s",
				url.PathEscape(requestID),
			),
			AuthHeaders: d.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsClient) Cancel(ctx context.Context, userID string) error {
	return d.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "account-delete/cancel-request",
			AuthHeaders: d.BearerTokenAuthHeaders(),
			ReqBodyObj: struct {
				UserID string `json:"userId"`
			}{
				UserID: userID,
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsClient) List(
	ctx context.Context,
) ([]DeletionRequest, error) {
	requests := []DeletionRequest{}
	if err := d.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "account-delete/deletion-requests",
			AuthHeaders: d.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &requests,
		},
	); err != nil {
		return nil, err
	}
	return requests, nil
}
