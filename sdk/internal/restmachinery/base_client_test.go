package restmachinery

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/stretchr/testify/require"
)

func TestNewBaseClient(t *testing.T) {
	g := newTestGateway(newTestSessions(t, false), nil)
	b := NewBaseClient("http://localhost:8080/", g, true)
	require.Equal(t, "http://localhost:8080", b.APIAddress)
	require.Same(t, g, b.Gateway)
	require.IsType(t, &http.Transport{}, b.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		b.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.True(
		t,
		b.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
}

func TestBaseClientExecuteRequest(t *testing.T) {
	type thing struct {
		Name string `json:"name"`
	}
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/v1/things", r.URL.Path)
				require.Equal(t, "bar", r.URL.Query().Get("foo"))
				require.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.Equal(t, "yes", r.Header.Get("X-Custom"))
				require.Equal(
					t,
					fmt.Sprintf("Bearer %s", testToken),
					r.Header.Get("Authorization"),
				)
				require.Equal(t, testTenantID, r.Header.Get(TenantHeader))
				bodyBytes, err := ioutil.ReadAll(r.Body)
				require.NoError(t, err)
				reqThing := thing{}
				require.NoError(t, json.Unmarshal(bodyBytes, &reqThing))
				require.Equal(t, "widget", reqThing.Name)
				w.WriteHeader(http.StatusCreated)
				fmt.Fprintln(w, `{"name":"gadget"}`)
			},
		),
	)
	defer server.Close()
	b := NewBaseClient(
		server.URL,
		newTestGateway(newTestSessions(t, true), &fakeNavigator{}),
		false,
	)
	respThing := thing{}
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method:      http.MethodPost,
			Path:        "v1/things",
			QueryParams: map[string]string{"foo": "bar"},
			Headers:     map[string]string{"X-Custom": "yes"},
			ReqBodyObj:  thing{Name: "widget"},
			SuccessCode: http.StatusCreated,
			RespObj:     &respThing,
		},
	)
	require.NoError(t, err)
	require.Equal(t, "gadget", respThing.Name)
}

func TestBaseClientErrorResponses(t *testing.T) {
	testCases := []struct {
		statusCode int
		body       string
		assertions func(*testing.T, error)
	}{
		{
			statusCode: http.StatusBadRequest,
			body:       `{"reason":"no good"}`,
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(t, "no good", err.(*meta.ErrBadRequest).Reason)
			},
		},
		{
			statusCode: http.StatusForbidden,
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrAuthorization{}, err)
			},
		},
		{
			statusCode: http.StatusNotFound,
			body:       `{"type":"Tenant","id":"t9"}`,
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrNotFound{}, err)
				require.Equal(t, "t9", err.(*meta.ErrNotFound).ID)
			},
		},
		{
			statusCode: http.StatusConflict,
			body:       "this is not json",
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrConflict{}, err)
			},
		},
		{
			statusCode: http.StatusInternalServerError,
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrInternalServer{}, err)
			},
		},
		{
			statusCode: http.StatusNotImplemented,
			body:       `{"reason":"not yet"}`,
			assertions: func(t *testing.T, err error) {
				require.IsType(t, &meta.ErrNotSupported{}, err)
				require.Equal(t, "not yet", err.Error())
			},
		},
		{
			statusCode: http.StatusTeapot,
			assertions: func(t *testing.T, err error) {
				require.Contains(t, err.Error(), "received 418")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(http.StatusText(testCase.statusCode), func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						atomic.AddInt32(&calls, 1)
						w.WriteHeader(testCase.statusCode)
						fmt.Fprint(w, testCase.body)
					},
				),
			)
			defer server.Close()
			sessions := newTestSessions(t, true)
			b := NewBaseClient(server.URL, newTestGateway(sessions, nil), false)
			err := b.ExecuteRequest(
				context.Background(),
				OutboundRequest{
					Method: http.MethodGet,
					Path:   "v1/things",
				},
			)
			require.Error(t, err)
			testCase.assertions(t, err)
			// Single attempt; no retries
			require.Equal(t, int32(1), atomic.LoadInt32(&calls))
			// Only a 401 discards the session
			require.True(t, sessions.IsSessionValid())
		})
	}
}

func TestBaseClientAbortsRequestWithoutSession(t *testing.T) {
	var calls int32
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	navigator := &fakeNavigator{location: "/dashboard"}
	b := NewBaseClient(
		server.URL,
		newTestGateway(newTestSessions(t, false), navigator),
		false,
	)
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method: http.MethodGet,
			Path:   "v1/tenants/user",
		},
	)
	require.Error(t, err)
	require.IsType(t, &meta.ErrSessionRequired{}, err)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
	require.Equal(t, DefaultLoginLocation, navigator.Location())
}

func TestBaseClientUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.NotEmpty(t, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"reason":"Session expired. Please log in again."}`)
			},
		),
	)
	defer server.Close()
	sessions := newTestSessions(t, true)
	navigator := &fakeNavigator{location: "/dashboard"}
	b := NewBaseClient(server.URL, newTestGateway(sessions, navigator), false)
	require.True(t, sessions.IsSessionValid())
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method: http.MethodGet,
			Path:   "v1/auth/me",
		},
	)
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthentication{}, err)
	require.Contains(t, err.Error(), "Session expired")
	require.False(t, sessions.IsSessionValid())
	require.Empty(t, sessions.GetTenantID())
	require.Equal(t, []string{DefaultLoginLocation}, navigator.navigations)

	// Subsequent requests are aborted before dispatch
	err = b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method: http.MethodGet,
			Path:   "v1/auth/me",
		},
	)
	require.IsType(t, &meta.ErrSessionRequired{}, err)
}

func TestBaseClientWithoutGateway(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	b := NewBaseClient(server.URL, nil, false)
	require.NoError(
		t,
		b.ExecuteRequest(
			context.Background(),
			OutboundRequest{
				Method: http.MethodGet,
				Path:   "healthz",
			},
		),
	)
}
