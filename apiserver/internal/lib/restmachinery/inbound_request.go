package restmachinery

import (
	"net/http"

	"github.com/xeipuuv/gojsonschema"
)

// InboundRequest represents an inbound REST API request.
type InboundRequest struct {
	// W is the http.ResponseWriter the response is written to.
	W http.ResponseWriter
	// R is the inbound *http.Request.
	R *http.Request
	// ReqBodySchemaLoader, if non-nil, is used to validate the request body
	// before EndpointLogic is invoked.
	ReqBodySchemaLoader gojsonschema.JSONLoader
	// ReqBodyObj, if non-nil, is what the request body is unmarshaled into.
	ReqBodyObj interface{}
	// EndpointLogic does the actual work. The object it returns is marshaled
	// as the response body.
	EndpointLogic func() (interface{}, error)
	// SuccessCode is the HTTP status code returned when EndpointLogic succeeds.
	SuccessCode int
	// FailureCode, if non-zero, is the HTTP status code returned when
	// EndpointLogic fails with an error that doesn't map to a more specific
	// status. It defaults to http.StatusInternalServerError.
	FailureCode int
}
