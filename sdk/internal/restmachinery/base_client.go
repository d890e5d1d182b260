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
	"strings"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BaseClient provides "API machinery" used by all the specialized API
// clients. Every request it submits passes through its Gateway.
type BaseClient struct {
	APIAddress string
	HTTPClient *http.Client
	Gateway    *Gateway
}

// NewBaseClient returns a BaseClient that submits requests to the specified
// API address through the provided Gateway.
func NewBaseClient(
	apiAddress string,
	gateway *Gateway,
	allowInsecure bool,
) *BaseClient {
	return &BaseClient{
		APIAddress: strings.TrimSuffix(apiAddress, "/"),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: allowInsecure, // nolint: gosec
				},
			},
		},
		Gateway: gateway,
	}
}

// ExecuteRequest submits req and unmarshals the response body, if any, into
// req.RespObj.
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

// SubmitRequest submits req and returns the raw response if its status code
// matches req.SuccessCode (200 if unspecified). Any other status code is
// converted to an error.
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
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		r.Header.Add(k, v)
	}

	if b.Gateway != nil {
		if err = b.Gateway.InterceptRequest(r); err != nil {
			return nil, err
		}
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}

	if b.Gateway != nil {
		b.Gateway.InterceptResponse(resp)
	}

	if (req.SuccessCode == 0 && resp.StatusCode != http.StatusOK) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		defer resp.Body.Close()
		// HTTP Response code hints at what sort of error might be in the body
		// of the response
		var apiErr error
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr = &meta.ErrAuthentication{}
		case http.StatusForbidden:
			apiErr = &meta.ErrAuthorization{}
		case http.StatusBadRequest:
			apiErr = &meta.ErrBadRequest{}
		case http.StatusNotFound:
			apiErr = &meta.ErrNotFound{}
		case http.StatusConflict:
			apiErr = &meta.ErrConflict{}
		case http.StatusInternalServerError:
			apiErr = &meta.ErrInternalServer{}
		case http.StatusNotImplemented:
			apiErr = &meta.ErrNotSupported{}
		default:
			return nil, errors.Errorf("received %d from API server", resp.StatusCode)
		}
		bodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error reading error response body")
		}
		// The body of an error response is advisory. An empty or unexpected body
		// still yields the error type indicated by the status code.
		if len(bodyBytes) > 0 {
			if err = json.Unmarshal(bodyBytes, apiErr); err != nil {
				b.logger().Debug().Err(err).
					Int("status", resp.StatusCode).
					Msg("error response body could not be parsed")
			}
		}
		return nil, apiErr
	}
	return resp, nil
}

func (b *BaseClient) logger() *zerolog.Logger {
	if b.Gateway != nil {
		return &b.Gateway.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
