package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/krancour/accounts/sdk/meta"
	"github.com/pkg/errors"
)

// BaseClient provides functionality common to all specialized API clients.
type BaseClient struct {
	APIAddress string
	APIToken   string
	HTTPClient *http.Client
}

// NewBaseClient returns a BaseClient. When allowInsecure is true, the API
// server's TLS certificate is not verified.
func NewBaseClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) *BaseClient {
	return &BaseClient{
		APIAddress: apiAddress,
		APIToken:   apiToken,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: allowInsecure, // nolint: gosec
				},
			},
		},
	}
}

// BearerTokenAuthHeaders returns an Authorization header carrying the
// client's session token, or nothing if there is none.
func (b *BaseClient) BearerTokenAuthHeaders() map[string]string {
	if b.APIToken == "" {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", b.APIToken),
	}
}

// ExecuteRequest submits the request and unmarshals the response body into
// req.RespObj, if non-nil.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj != nil {
		respBodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits the request and returns the raw response. Any status
// other than the expected success code is converted to an error.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, req.Path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	if reqBodyReader != nil {
		if _, ok := req.ReqBodyObj.([]byte); !ok {
			r.Header.Set("Content-Type", "application/json")
		}
	}
	for k, v := range req.AuthHeaders {
		r.Header.Add(k, v)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}

	successCode := req.SuccessCode
	if successCode == 0 {
		successCode = http.StatusOK
	}
	if resp.StatusCode == successCode {
		return resp, nil
	}

	defer resp.Body.Close()
	// HTTP Response code hints at what sort of error might be in the body
	// of the response
	var apiErr error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr = &meta.ErrAuthentication{}
	case http.StatusBadRequest:
		apiErr = &meta.ErrBadRequest{}
	case http.StatusNotFound:
		apiErr = &meta.ErrNotFound{}
	case http.StatusNotImplemented:
		apiErr = &meta.ErrNotSupported{}
	case http.StatusInternalServerError:
		apiErr = &meta.ErrInternalServer{}
	default:
		return nil, errors.Errorf("received %d from API server", resp.StatusCode)
	}
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading error response body")
	}
	if err = json.Unmarshal(bodyBytes, apiErr); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling error response body")
	}
	return nil, apiErr
}
