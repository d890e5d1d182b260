package restmachinery

import (
	"sync"
	"testing"

	"github.com/krancour/bizdesk/sdk/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "opensesame"
	testTenantID = "t1"
)

var testUser = session.User{
	ID:     "tony",
	Name:   "Tony Stark",
	Email:  "tony@starkindustries.example",
	Role:   session.RoleAdmin,
	Active: true,
}

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

func newTestSessions(t *testing.T, loggedIn bool) *session.Manager {
	sessions := session.NewManager(session.NewMemoryStore(), nil)
	if loggedIn {
		require.NoError(t, sessions.SetSession(testToken, testUser, 0))
		_, _, err := sessions.SetTenantContext(
			[]session.Tenant{{ID: testTenantID, Name: "Stark Industries"}},
		)
		require.NoError(t, err)
	}
	return sessions
}

func newTestGateway(
	sessions *session.Manager,
	navigator Navigator,
) *Gateway {
	return NewGateway(sessions, navigator, zerolog.Nop())
}
