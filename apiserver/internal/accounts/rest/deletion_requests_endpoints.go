package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/accounts/apiserver/internal/accounts"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
	"github.com/xeipuuv/gojsonschema"
)

type cancellationResponse struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type deletionRequestsEndpoints struct {
	*restmachinery.BaseEndpoints
	submissionSchemaLoader   gojsonschema.JSONLoader
	cancellationSchemaLoader gojsonschema.JSONLoader
	service                  accounts.DeletionRequestsService
}

// NewDeletionRequestsEndpoints returns the account deletion request
// endpoints.
func NewDeletionRequestsEndpoints(
	baseEndpoints *restmachinery.BaseEndpoints,
	service accounts.DeletionRequestsService,
) restmachinery.Endpoints {
	return &deletionRequestsEndpoints{
		BaseEndpoints:            baseEndpoints,
		submissionSchemaLoader:   mustLoadSchema("deletion-request"),
		cancellationSchemaLoader: mustLoadSchema("deletion-request-cancellation"),
		service:                  service,
	}
}

func (d *deletionRequestsEndpoints) Register(router *mux.Router) {
	// Submit request
	router.HandleFunc(
		"/account-delete/request",
		d.submit,
	).Methods(http.MethodPost)

	// Mark request treated
	router.HandleFunc(
		"/account-delete/mark-as-treated/{requestId}",
		d.markTreated,
	).Methods(http.MethodPut)

	// Check for request
	router.HandleFunc(
		"/account-delete/check-deletion-request/{userId}",
		d.checkExists,
	).Methods(http.MethodGet)

	// Cancel request
	router.HandleFunc(
		"/account-delete/cancel-request",
		d.cancel,
	).Methods(http.MethodPost)

	// List requests
	router.HandleFunc(
		"/account-delete/deletion-requests",
		d.list,
	).Methods(http.MethodGet)
}

func (d *deletionRequestsEndpoints) submit(
	w http.ResponseWriter,
	r *http.Request,
) {
	submission := struct {
		UserID         string `json:"userId"`
		DeletionReason string `json:"deletionReason"`
	}{}
	d.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: d.submissionSchemaLoader,
			ReqBodyObj:          &submission,
			EndpointLogic: func() (interface{}, error) {
				if err := d.service.Submit(
					r.Context(),
					submission.UserID,
					submission.DeletionReason,
				); err != nil {
					return nil, err
				}
				return messageResponse{
					Message: "Account deletion request successfully recorded.",
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsEndpoints) markTreated(
	w http.ResponseWriter,
	r *http.Request,
) {
	d.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				if err := d.service.MarkTreated(
					r.Context(),
					mux.Vars(r)["requestId"],
				); err != nil {
					return nil, err
				}
				return messageResponse{
					Message: "Account deletion request marked as treated.",
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsEndpoints) checkExists(
	w http.ResponseWriter,
	r *http.Request,
) {
	d.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct {
					Exists bool `json:"exists"`
				}{
					Exists: d.service.CheckExists(r.Context(), mux.Vars(r)["userId"]),
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsEndpoints) cancel(
	w http.ResponseWriter,
	r *http.Request,
) {
	cancellation := struct {
		UserID string `json:"userId"`
	}{}
	d.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: d.cancellationSchemaLoader,
			ReqBodyObj:          &cancellation,
			EndpointLogic: func() (interface{}, error) {
				if err :=
					d.service.Cancel(r.Context(), cancellation.UserID); err != nil {
					return nil, err
				}
				return cancellationResponse{
					Code:    http.StatusOK,
					Success: true,
					Message: "Account deletion request canceled.",
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (d *deletionRequestsEndpoints) list(
	w http.ResponseWriter,
	r *http.Request,
) {
	d.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return d.service.List(r.Context())
			},
			SuccessCode: http.StatusOK,
		},
	)
}
