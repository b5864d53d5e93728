package restmachinery

// OutboundRequest represents a request to the API server.
type OutboundRequest struct {
	Method      string
	Path        string
	QueryParams map[string]string
	AuthHeaders map[string]string
	Headers     map[string]string
	// ReqBodyObj is marshaled to JSON unless it is already a []byte.
	ReqBodyObj  interface{}
	SuccessCode int
	RespObj     interface{}
}
