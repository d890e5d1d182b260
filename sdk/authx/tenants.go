package authx

import (
	"context"
	"net/http"

	"github.com/krancour/bizdesk/sdk/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
)

// TenantsClient is the specialized client for discovering and selecting the
// tenants the current User may access.
type TenantsClient interface {
	// List retrieves the tenants the current User may access from the API
	// server. It does not modify the cached tenant list.
	List(context.Context) ([]session.Tenant, error)
	// Switch selects the specified tenant for all subsequent requests. Only the
	// locally cached tenant list is consulted; the API server remains
	// responsible for enforcing tenant membership on each request. If the
	// tenant is not in the cache, *meta.ErrAccessDenied is returned and the
	// current selection is unchanged.
	Switch(tenantID string) (session.Tenant, error)
	// Current returns the currently selected tenant, if any.
	Current() (session.Tenant, bool)
}

type tenantsClient struct {
	*restmachinery.BaseClient
	sessions *session.Manager
}

// NewTenantsClient returns a specialized client for tenant discovery and
// selection.
func NewTenantsClient(
	apiAddress string,
	sessions *session.Manager,
	opts *APIClientOptions,
) TenantsClient {
	return &tenantsClient{
		BaseClient: newBaseClient(apiAddress, sessions, opts),
		sessions:   sessions,
	}
}

func (t *tenantsClient) List(ctx context.Context) ([]session.Tenant, error) {
	tenants := []session.Tenant{}
	return tenants, t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "v1/tenants/user",
			SuccessCode: http.StatusOK,
			RespObj:     &tenants,
		},
	)
}

func (t *tenantsClient) Switch(tenantID string) (session.Tenant, error) {
	tenant, ok, err := t.sessions.SwitchTenant(tenantID)
	if err != nil {
		return tenant, err
	}
	if !ok {
		return tenant, &meta.ErrAccessDenied{TenantID: tenantID}
	}
	return tenant, nil
}

func (t *tenantsClient) Current() (session.Tenant, bool) {
	currentID := t.sessions.GetTenantID()
	if currentID == "" {
		return session.Tenant{}, false
	}
	for _, tenant := range t.sessions.GetUserTenants() {
		if tenant.ID == currentID {
			return tenant, true
		}
	}
	return session.Tenant{}, false
}
