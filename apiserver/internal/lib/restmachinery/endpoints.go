package restmachinery

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Endpoints is an interface to be implemented by all REST API endpoints.
type Endpoints interface {
	// Register is invoked at startup to bind handlers to the router.
	Register(router *mux.Router)
}

// HealthChecker may optionally be implemented by Endpoints that depend on
// something whose availability should be reflected by the server's health
// check.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// BaseEndpoints encapsulates functionality common to all REST API endpoints.
type BaseEndpoints struct {
	// SessionAuthFilter attaches the caller's identity, when one can be
	// established, to the request context. Anonymous requests pass through.
	SessionAuthFilter Filter
	// RequireAuthFilter rejects requests whose context carries no identity. It
	// must be applied inside SessionAuthFilter.
	RequireAuthFilter Filter
}

func (b *BaseEndpoints) readAndValidateRequestBody(
	w http.ResponseWriter,
	r *http.Request,
	bodySchemaLoader gojsonschema.JSONLoader,
	bodyObj interface{},
) bool {
	defer r.Body.Close()
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		// Log it in case something is actually wrong...
		log.Println(errors.Wrap(err, "error reading request body"))
		// But we're going to assume this is because the request body is missing,
		// so we'll treat it as a bad request.
		b.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&meta.ErrBadRequest{
				Reason: "Could not read request body.",
			},
		)
		return false
	}
	if bodySchemaLoader != nil {
		var validationResult *gojsonschema.Result
		validationResult, err = gojsonschema.Validate(
			bodySchemaLoader,
			gojsonschema.NewBytesLoader(bodyBytes),
		)
		if err != nil {
			// Log it in case something is actually wrong...
			log.Println(errors.Wrap(err, "error validating request body"))
			// But as long as the schema itself was valid, the most likely scenario
			// here is that the request body wasn't valid JSON, so we'll treat this
			// as a bad request.
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: "Could not validate request body.",
				},
			)
			return false
		}
		if !validationResult.Valid() {
			verrStrs := make([]string, len(validationResult.Errors()))
			for i, verr := range validationResult.Errors() {
				verrStrs[i] = verr.String()
			}
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason:  "Request body failed JSON validation",
					Details: verrStrs,
				},
			)
			return false
		}
	}
	if bodyObj != nil {
		if err = json.Unmarshal(bodyBytes, bodyObj); err != nil {
			log.Println(errors.Wrap(err, "error unmarshaling request body"))
			if bodySchemaLoader != nil {
				// We were already able to validate the request body, which means it
				// was valid JSON. If something went wrong with unmarshaling, it's NOT
				// because of a bad request-- it's a real, internal problem.
				b.WriteAPIResponse(
					w,
					http.StatusInternalServerError,
					&meta.ErrInternalServer{},
				)
				return false
			}
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: "Request body is not valid JSON.",
				},
			)
			return false
		}
	}
	return true
}

// ServeRequest handles an inbound REST API request: it optionally validates
// and unmarshals the request body, invokes the endpoint logic, and maps the
// result or error onto an HTTP response.
func (b *BaseEndpoints) ServeRequest(req InboundRequest) {
	if req.ReqBodySchemaLoader != nil || req.ReqBodyObj != nil {
		if !b.readAndValidateRequestBody(
			req.W,
			req.R,
			req.ReqBodySchemaLoader,
			req.ReqBodyObj,
		) {
			return
		}
	}
	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		b.WriteAPIError(req.W, err, req.FailureCode)
		return
	}
	b.WriteAPIResponse(req.W, req.SuccessCode, respBodyObj)
}

// WriteAPIError maps the provided error onto an HTTP status and writes it. Any
// error that doesn't map onto a specific status is logged and reported using
// failureCode, or http.StatusInternalServerError if failureCode is zero.
func (b *BaseEndpoints) WriteAPIError(
	w http.ResponseWriter,
	err error,
	failureCode int,
) {
	if failureCode == 0 {
		failureCode = http.StatusInternalServerError
	}
	switch e := errors.Cause(err).(type) {
	case *meta.ErrAuthentication:
		b.WriteAPIResponse(w, http.StatusUnauthorized, e)
	case *meta.ErrBadRequest:
		b.WriteAPIResponse(w, http.StatusBadRequest, e)
	case *meta.ErrNotFound:
		b.WriteAPIResponse(w, http.StatusNotFound, e)
	case *meta.ErrNotSupported:
		b.WriteAPIResponse(w, http.StatusNotImplemented, e)
	case *meta.ErrInternalServer:
		log.Println(err)
		b.WriteAPIResponse(w, http.StatusInternalServerError, e)
	case *meta.ErrConflict:
		// Conflicts have no dedicated status on this API.
		log.Println(err)
		b.WriteAPIResponse(w, failureCode, e)
	default:
		log.Println(err)
		b.WriteAPIResponse(
			w,
			failureCode,
			&meta.ErrGeneric{
				Message: e.Error(),
			},
		)
	}
}

// WriteAPIResponse marshals the response object to JSON (unless it is already
// a []byte) and writes it with the provided status code.
func (b *BaseEndpoints) WriteAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, ok := response.([]byte)
	if !ok {
		var err error
		if responseBody, err = json.Marshal(response); err != nil {
			log.Println(errors.Wrap(err, "error marshaling response body"))
		}
	}
	if _, err := w.Write(responseBody); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}
