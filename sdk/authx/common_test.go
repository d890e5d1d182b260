package authx

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/krancour/bizdesk/sdk/internal/restmachinery"
	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/stretchr/testify/require"
)

const (
	testAPIAddress          = "localhost:8080"
	testClientAllowInsecure = true
	testToken               = "opensesame"
)

var (
	testUser = session.User{
		ID:     "tony",
		Name:   "Tony Stark",
		Email:  "tony@starkindustries.example",
		Role:   session.RoleAdmin,
		Active: true,
	}
	testTenants = []session.Tenant{
		{
			ID:     "t1",
			Name:   "Stark Industries",
			Domain: "starkindustries.example",
		},
		{
			ID:   "t2",
			Name: "Avengers",
		},
	}
)

type fakeNavigator struct {
	mu          sync.Mutex
	location    string
	navigations []string
}

func (f *fakeNavigator) Location() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

func (f *fakeNavigator) Navigate(location string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = location
	f.navigations = append(f.navigations, location)
}

func newTestSessions() (*session.Manager, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return session.NewManager(store, nil), store
}

func newLoggedInSessions(t *testing.T) *session.Manager {
	sessions, _ := newTestSessions()
	require.NoError(t, sessions.SetSession(testToken, testUser, 0))
	_, _, err := sessions.SetTenantContext(testTenants)
	require.NoError(t, err)
	return sessions
}

func requireAPIVersionAndType(
	t *testing.T,
	obj interface{},
	expectedType string,
) {
	objJSON, err := json.Marshal(obj)
	require.NoError(t, err)
	objMap := map[string]interface{}{}
	err = json.Unmarshal(objJSON, &objMap)
	require.NoError(t, err)
	require.Equal(t, meta.APIVersion, objMap["apiVersion"])
	require.Equal(t, expectedType, objMap["kind"])
}

func requireBaseClient(t *testing.T, baseClient *restmachinery.BaseClient) {
	require.Equal(t, testAPIAddress, baseClient.APIAddress)
	require.IsType(t, &http.Client{}, baseClient.HTTPClient)
	require.IsType(t, &http.Transport{}, baseClient.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.Equal(
		t,
		testClientAllowInsecure,
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
	require.NotNil(t, baseClient.Gateway)
}
