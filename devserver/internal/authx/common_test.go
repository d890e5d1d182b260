package authx

import (
	"context"
	"testing"
	"time"

	"github.com/krancour/bizdesk/devserver/internal/restmachinery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testConfig = Config{
	SessionTTL:       time.Hour,
	SeedEnabled:      true,
	SeedUserName:     "Demo User",
	SeedUserEmail:    "demo@bizdesk.example",
	SeedUserPassword: "bizdesk-demo",
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestService(t *testing.T) (*service, Store, *testClock) {
	store := NewMemoryStore()
	svc := NewService(store, testConfig.SessionTTL, zerolog.Nop()).(*service)
	svc.bcryptCost = bcrypt.MinCost
	clock := &testClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	require.NoError(t, Seed(context.Background(), store, svc, testConfig))
	return svc, store, clock
}

func newTestBaseEndpoints() *restmachinery.BaseEndpoints {
	return &restmachinery.BaseEndpoints{Logger: zerolog.Nop()}
}

func loginDemoUser(t *testing.T, svc Service) LoginResponse {
	resp, err := svc.Login(
		context.Background(),
		Credentials{
			Email:    testConfig.SeedUserEmail,
			Password: testConfig.SeedUserPassword,
		},
	)
	require.NoError(t, err)
	require.True(t, resp.Success)
	return resp
}
