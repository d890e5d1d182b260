package authx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/stretchr/testify/require"
)

func TestNewTenantsClient(t *testing.T) {
	sessions, _ := newTestSessions()
	client := NewTenantsClient(
		testAPIAddress,
		sessions,
		&APIClientOptions{AllowInsecure: testClientAllowInsecure},
	)
	require.IsType(t, &tenantsClient{}, client)
	requireBaseClient(t, client.(*tenantsClient).BaseClient)
}

func TestTenantsClientList(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/v1/tenants/user", r.URL.Path)
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(testTenants))
			},
		),
	)
	defer server.Close()
	sessions := newLoggedInSessions(t)
	_, _, err := sessions.SetTenantContext(nil)
	require.NoError(t, err)
	client := NewTenantsClient(server.URL, sessions, nil)
	tenants, err := client.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, testTenants, tenants)
	// Listing does not touch the cache
	require.Empty(t, sessions.GetUserTenants())
}

func TestTenantsClientSwitch(t *testing.T) {
	sessions := newLoggedInSessions(t)
	client := NewTenantsClient(testAPIAddress, sessions, nil)

	tenant, err := client.Switch("t2")
	require.NoError(t, err)
	require.Equal(t, testTenants[1], tenant)
	require.Equal(t, "t2", sessions.GetTenantID())

	_, err = client.Switch("t3")
	require.IsType(t, &meta.ErrAccessDenied{}, err)
	require.Equal(t, "t3", err.(*meta.ErrAccessDenied).TenantID)
	require.Equal(t, "t2", sessions.GetTenantID())

	current, ok := client.Current()
	require.True(t, ok)
	require.Equal(t, testTenants[1], current)
}

func TestTenantsClientSwitchedTenantScopesRequests(t *testing.T) {
	var tenantHeader string
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				tenantHeader = r.Header.Get("X-Tenant-ID")
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(testUser))
			},
		),
	)
	defer server.Close()
	sessions := newLoggedInSessions(t)
	client := NewAPIClient(server.URL, sessions, nil)
	_, err := client.Tenants().Switch("t2")
	require.NoError(t, err)
	_, err = client.Users().GetCurrent(context.Background())
	require.NoError(t, err)
	require.Equal(t, "t2", tenantHeader)
}

func TestTenantsClientCurrentWithoutSession(t *testing.T) {
	sessions, _ := newTestSessions()
	client := NewTenantsClient(testAPIAddress, sessions, nil)
	_, ok := client.Current()
	require.False(t, ok)
	_, err := client.Switch("t1")
	require.Error(t, err)
}
