package restmachinery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type pingEndpoints struct {
	*BaseEndpoints
}

func (p *pingEndpoints) Register(router *mux.Router) {
	router.HandleFunc("/v1/ping", p.ping).Methods(http.MethodGet)
}

func (p *pingEndpoints) ping(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return map[string]string{"pong": "true"}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func TestServer(t *testing.T) {
	baseEndpoints := &BaseEndpoints{Logger: zerolog.Nop()}
	s := NewServer(
		ServerConfig{Port: 8080},
		baseEndpoints,
		[]Endpoints{&pingEndpoints{BaseEndpoints: baseEndpoints}},
	)
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "health check",
			method:     http.MethodGet,
			path:       "/healthz",
			statusCode: http.StatusOK,
		},
		{
			name:       "registered endpoint",
			method:     http.MethodGet,
			path:       "/v1/ping",
			statusCode: http.StatusOK,
		},
		{
			name:       "unknown endpoint",
			method:     http.MethodGet,
			path:       "/v1/nope",
			statusCode: http.StatusNotFound,
		},
		{
			name:       "wrong method",
			method:     http.MethodPost,
			path:       "/v1/ping",
			statusCode: http.StatusMethodNotAllowed,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, httptest.NewRequest(testCase.method, testCase.path, nil))
			require.Equal(t, testCase.statusCode, rr.Code)
		})
	}
}

func TestServerCORSPreflight(t *testing.T) {
	s := NewServer(ServerConfig{}, &BaseEndpoints{Logger: zerolog.Nop()}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Tenant-ID")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	require.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-Tenant-Id")
}
