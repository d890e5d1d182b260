package authx

import (
	"github.com/krancour/bizdesk/sdk/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/rs/zerolog"
)

// Navigator is the navigable surface of an interactive client. Clients that
// have one are sent to the login location whenever re-authentication is
// required.
type Navigator = restmachinery.Navigator

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecure specifies whether the client should permit connections to
	// an API server that presents an untrusted TLS certificate.
	AllowInsecure bool
	// Navigator should be left nil for non-interactive clients. When nil,
	// requests to protected endpoints are dispatched even without a valid
	// session and the API server is left to reject them.
	Navigator Navigator
	// LoginLocation overrides the location a Navigator is sent to when
	// re-authentication is required.
	LoginLocation string
	Logger        *zerolog.Logger
}

// APIClient is the root of a tree of more specialized API clients for the
// BizDesk API.
type APIClient interface {
	// Sessions returns a specialized client for logging in and out.
	Sessions() SessionsClient
	// Tenants returns a specialized client for tenant discovery and selection.
	Tenants() TenantsClient
	// Users returns a specialized client for User identity.
	Users() UsersClient
}

type apiClient struct {
	sessionsClient SessionsClient
	tenantsClient  TenantsClient
	usersClient    UsersClient
}

// NewAPIClient returns a BizDesk API client. All specialized clients share
// the provided session Manager, so a session established or discarded through
// one of them is immediately visible to the others.
func NewAPIClient(
	apiAddress string,
	sessions *session.Manager,
	opts *APIClientOptions,
) APIClient {
	return &apiClient{
		sessionsClient: NewSessionsClient(apiAddress, sessions, opts),
		tenantsClient:  NewTenantsClient(apiAddress, sessions, opts),
		usersClient:    NewUsersClient(apiAddress, sessions, opts),
	}
}

func (a *apiClient) Sessions() SessionsClient {
	return a.sessionsClient
}

func (a *apiClient) Tenants() TenantsClient {
	return a.tenantsClient
}

func (a *apiClient) Users() UsersClient {
	return a.usersClient
}

func newBaseClient(
	apiAddress string,
	sessions *session.Manager,
	opts *APIClientOptions,
) *restmachinery.BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	gateway := restmachinery.NewGateway(sessions, opts.Navigator, loggerOf(opts))
	if opts.LoginLocation != "" {
		gateway.LoginLocation = opts.LoginLocation
	}
	return restmachinery.NewBaseClient(apiAddress, gateway, opts.AllowInsecure)
}

func loggerOf(opts *APIClientOptions) zerolog.Logger {
	if opts == nil || opts.Logger == nil {
		return zerolog.Nop()
	}
	return *opts.Logger
}
