package authx

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/krancour/bizdesk/sdk/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Credentials represents the email address and password a User logs in with.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MarshalJSON amends Credentials instances with type metadata so that clients
// do not need to be concerned with the tedium of doing so.
func (c Credentials) MarshalJSON() ([]byte, error) {
	type Alias Credentials
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "Credentials",
			},
			Alias: (Alias)(c),
		},
	)
}

// Registration represents a request to create a new User account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MarshalJSON amends Registration instances with type metadata so that
// clients do not need to be concerned with the tedium of doing so.
func (r Registration) MarshalJSON() ([]byte, error) {
	type Alias Registration
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "Registration",
			},
			Alias: (Alias)(r),
		},
	)
}

// LoginOutcome distinguishes the ways in which a login can succeed.
type LoginOutcome string

const (
	// LoginOutcomeAuthenticatedWithTenant indicates a session was established
	// and a tenant was selected.
	LoginOutcomeAuthenticatedWithTenant LoginOutcome = "AuthenticatedWithTenant"
	// LoginOutcomeAuthenticatedNoTenant indicates a session was established but
	// no tenant could be selected, either because the User has access to none
	// or because the tenant list could not be retrieved.
	LoginOutcomeAuthenticatedNoTenant LoginOutcome = "AuthenticatedNoTenant"
)

// LoginResult describes a successful login. A failed login is reported as an
// error instead.
type LoginResult struct {
	Outcome LoginOutcome
	User    session.User
	// Tenant is only meaningful when Outcome is
	// LoginOutcomeAuthenticatedWithTenant.
	Tenant session.Tenant
}

// loginResponse is the API server's reply to a login request.
type loginResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token,omitempty"`
	User    *session.User `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
	// ExpiresIn is the token's lifetime in seconds. Zero if undeclared.
	ExpiresIn int64 `json:"expiresIn,omitempty"`
}

// maxExpiresIn is the longest token lifetime, in seconds, that fits in a
// time.Duration.
const maxExpiresIn = int64(math.MaxInt64 / int64(time.Second))

func (l loginResponse) lifetime() time.Duration {
	if l.ExpiresIn > maxExpiresIn {
		return time.Duration(maxExpiresIn) * time.Second
	}
	return time.Duration(l.ExpiresIn) * time.Second
}

// SessionsClient is the specialized client for establishing and discarding
// sessions.
type SessionsClient interface {
	// Login exchanges the provided Credentials for a session. On success, the
	// tenants the User may access are retrieved and cached and one of them is
	// selected. Failing to retrieve tenants does not fail the login unless the
	// API server rejected the new token while doing so. If login fails, no
	// session state is left behind.
	Login(context.Context, Credentials) (LoginResult, error)
	// Register creates a new User account. It does not log the User in.
	Register(context.Context, Registration) (session.User, error)
	// Logout discards the current session and all tenant state.
	Logout() error
}

type sessionsClient struct {
	*restmachinery.BaseClient
	sessions      *session.Manager
	tenantsClient TenantsClient
	logger        zerolog.Logger
}

// NewSessionsClient returns a specialized client for establishing and
// discarding sessions.
func NewSessionsClient(
	apiAddress string,
	sessions *session.Manager,
	opts *APIClientOptions,
) SessionsClient {
	return &sessionsClient{
		BaseClient:    newBaseClient(apiAddress, sessions, opts),
		sessions:      sessions,
		tenantsClient: NewTenantsClient(apiAddress, sessions, opts),
		logger:        loggerOf(opts),
	}
}

func (s *sessionsClient) Login(
	ctx context.Context,
	credentials Credentials,
) (LoginResult, error) {
	result := LoginResult{}
	resp := loginResponse{}
	if err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "v1/auth/login",
			ReqBodyObj:  credentials,
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return result, err
	}
	if !resp.Success || resp.Token == "" || resp.User == nil ||
		resp.User.ID == "" {
		reason := resp.Message
		if reason == "" {
			reason = "Login was not successful."
		}
		return result, &meta.ErrAuthentication{Reason: reason}
	}

	if err := s.sessions.SetSession(
		resp.Token,
		*resp.User,
		resp.lifetime(),
	); err != nil {
		return result, errors.Wrap(err, "error persisting session")
	}
	result.User = *resp.User
	result.Outcome = LoginOutcomeAuthenticatedNoTenant

	tenants, err := s.tenantsClient.List(ctx)
	if err != nil {
		// A 401 from the tenants endpoint discards the session we just stored.
		if !s.sessions.IsSessionValid() {
			return LoginResult{}, err
		}
		s.logger.Warn().Err(err).
			Msg("error retrieving tenants; continuing without a tenant")
		return result, nil
	}
	tenant, ok, err := s.sessions.SetTenantContext(tenants)
	if err != nil {
		s.logger.Warn().Err(err).
			Msg("error caching tenants; continuing without a tenant")
		return result, nil
	}
	if ok {
		result.Outcome = LoginOutcomeAuthenticatedWithTenant
		result.Tenant = tenant
	}
	return result, nil
}

func (s *sessionsClient) Register(
	ctx context.Context,
	registration Registration,
) (session.User, error) {
	user := session.User{}
	return user, s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "v1/auth/register",
			ReqBodyObj:  registration,
			SuccessCode: http.StatusCreated,
			RespObj:     &user,
		},
	)
}

func (s *sessionsClient) Logout() error {
	return s.sessions.ClearSession()
}
