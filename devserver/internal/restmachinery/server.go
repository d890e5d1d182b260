package restmachinery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/bizdesk/internal/file"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 5 * time.Second

// Server is an interface for the component that responds to HTTP API requests
type Server interface {
	http.Handler
	// ListenAndServe causes the API server to start serving HTTP requests. It
	// blocks until the context is canceled or an error occurs.
	ListenAndServe(ctx context.Context) error
}

type server struct {
	*BaseEndpoints // The server itself exposes health check endpoints
	config         ServerConfig
	handler        http.Handler
}

// NewServer returns a REST API server
func NewServer(
	config ServerConfig,
	baseEndpoints *BaseEndpoints,
	endpoints []Endpoints,
) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	s := &server{
		BaseEndpoints: baseEndpoints,
		config:        config,
		handler: cors.New(
			cors.Options{
				AllowedMethods: []string{"DELETE", "GET", "POST", "PUT"},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Tenant-ID"},
			},
		).Handler(router),
	}

	// Health check
	router.HandleFunc(
		"/healthz",
		s.checkHealth, // No filters applied to this request
	).Methods(http.MethodGet)

	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.config.Port)}
	tlsEnabled := s.config.TLSEnabled &&
		file.Exists(s.config.TLSCertPath) &&
		file.Exists(s.config.TLSKeyPath)

	errCh := make(chan error, 1)
	if tlsEnabled {
		s.Logger.Info().Int("port", s.config.Port).
			Msg("API server is listening with TLS enabled")
		srv.Handler = s.handler
		go func() {
			errCh <- srv.ListenAndServeTLS(s.config.TLSCertPath, s.config.TLSKeyPath)
		}()
	} else {
		s.Logger.Info().Int("port", s.config.Port).
			Msg("API server is listening without TLS")
		srv.Handler = h2c.NewHandler(s.handler, &http2.Server{})
		go func() {
			errCh <- srv.ListenAndServe()
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	s.Logger.Info().Msg("API server is shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *server) checkHealth(w http.ResponseWriter, r *http.Request) {
	s.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}
