package restmachinery

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/rs/zerolog"
)

const (
	// TenantHeader carries the ID of the tenant to which a request is scoped.
	TenantHeader = "X-Tenant-ID"

	// DefaultLoginLocation is where a Navigator is sent when re-authentication
	// is required.
	DefaultLoginLocation = "/login"
)

// DefaultPublicPaths lists path fragments of endpoints that do not require an
// authenticated session.
var DefaultPublicPaths = []string{
	"auth/login",
	"auth/register",
}

// Navigator is the navigable surface of an interactive client. A Gateway
// without a Navigator assumes a non-interactive context, where callers guard
// their own requests.
type Navigator interface {
	// Location returns the client's current location.
	Location() string
	// Navigate moves the client to the specified location.
	Navigate(location string)
}

// Gateway attaches credentials and tenant scope to every outbound request and
// forces re-authentication when the API server rejects those credentials.
// Requests are attempted exactly once.
type Gateway struct {
	Sessions *session.Manager
	// Navigator may be nil.
	Navigator Navigator
	// LoginLocation defaults to DefaultLoginLocation.
	LoginLocation string
	// PublicPaths defaults to DefaultPublicPaths. A request whose path contains
	// any of these is exempt from the session precondition.
	PublicPaths []string
	Logger      zerolog.Logger
}

// NewGateway returns a Gateway with default login location and public paths.
func NewGateway(
	sessions *session.Manager,
	navigator Navigator,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		Sessions:      sessions,
		Navigator:     navigator,
		LoginLocation: DefaultLoginLocation,
		PublicPaths:   DefaultPublicPaths,
		Logger:        logger,
	}
}

// InterceptRequest prepares r for dispatch. It returns
// *meta.ErrSessionRequired, after navigating to the login location, if r
// targets a non-public endpoint from an interactive client with no valid
// session. The request must not be dispatched in that case.
func (g *Gateway) InterceptRequest(r *http.Request) error {
	if !g.isPublic(r.URL.Path) &&
		g.Navigator != nil &&
		!g.Sessions.IsSessionValid() {
		g.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("aborting request; no valid session")
		g.Navigator.Navigate(g.loginLocation())
		return &meta.ErrSessionRequired{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/"),
		}
	}
	if token, ok := g.Sessions.GetToken(); ok {
		r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if tenantID := g.Sessions.GetTenantID(); tenantID != "" {
		r.Header.Set(TenantHeader, tenantID)
	}
	return nil
}

// InterceptResponse inspects resp before it is returned to the caller. A 401
// discards the local session and sends an interactive client to the login
// location. All other responses pass through untouched.
func (g *Gateway) InterceptResponse(resp *http.Response) {
	if resp.StatusCode != http.StatusUnauthorized {
		return
	}
	evt := g.Logger.Info()
	if resp.Request != nil {
		evt = evt.Str("path", resp.Request.URL.Path)
	}
	evt.Msg("credentials were rejected; discarding session")
	if err := g.Sessions.ClearSession(); err != nil {
		g.Logger.Error().Err(err).Msg("error discarding session")
	}
	if g.Navigator != nil && g.Navigator.Location() != g.loginLocation() {
		g.Navigator.Navigate(g.loginLocation())
	}
}

func (g *Gateway) isPublic(path string) bool {
	publicPaths := g.PublicPaths
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}
	for _, p := range publicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func (g *Gateway) loginLocation() string {
	if g.LoginLocation == "" {
		return DefaultLoginLocation
	}
	return g.LoginLocation
}
