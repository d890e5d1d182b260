package authx

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
)

type userRecord struct {
	session.User
	HashedPassword []byte
}

type sessionRecord struct {
	Token  string
	UserID string
	// Expires is the zero value for sessions that never expire
	Expires time.Time
}

// Store is an interface for components that persist users, sessions and
// tenants.
type Store interface {
	CreateUser(context.Context, userRecord) error
	GetUser(ctx context.Context, id string) (userRecord, error)
	// UpdateUser replaces an existing user. The email address cannot change.
	UpdateUser(context.Context, userRecord) error
	GetUserByEmail(ctx context.Context, email string) (userRecord, error)
	CreateSession(context.Context, sessionRecord) error
	GetSession(ctx context.Context, token string) (sessionRecord, error)
	DeleteSession(ctx context.Context, token string) error
	CreateTenant(context.Context, session.Tenant) error
	AddMember(ctx context.Context, tenantID string, userID string) error
	ListTenantsForUser(ctx context.Context, userID string) ([]session.Tenant, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	users   map[string]userRecord
	emails  map[string]string
	tokens  map[string]sessionRecord
	tenants map[string]session.Tenant
	// tenantIDs holds the tenants of each user in the order they were granted
	tenantIDs map[string][]string
}

// NewMemoryStore returns a Store that keeps everything in memory.
func NewMemoryStore() Store {
	return &memoryStore{
		users:     map[string]userRecord{},
		emails:    map[string]string{},
		tokens:    map[string]sessionRecord{},
		tenants:   map[string]session.Tenant{},
		tenantIDs: map[string][]string{},
	}
}

func (m *memoryStore) CreateUser(_ context.Context, user userRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := m.emails[email]; ok {
		return &meta.ErrConflict{
			Type:   "User",
			ID:     user.Email,
			Reason: "An account with this email address already exists.",
		}
	}
	if _, ok := m.users[user.ID]; ok {
		return &meta.ErrConflict{Type: "User", ID: user.ID}
	}
	m.users[user.ID] = user
	m.emails[email] = user.ID
	return nil
}

func (m *memoryStore) GetUser(_ context.Context, id string) (userRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return user, &meta.ErrNotFound{Type: "User", ID: id}
	}
	return user, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, user userRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return &meta.ErrNotFound{Type: "User", ID: user.ID}
	}
	if !strings.EqualFold(existing.Email, user.Email) {
		return &meta.ErrBadRequest{Reason: "A user's email address cannot change."}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryStore) GetUserByEmail(
	_ context.Context,
	email string,
) (userRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return userRecord{}, &meta.ErrNotFound{Type: "User", ID: email}
	}
	return m.users[id], nil
}

func (m *memoryStore) CreateSession(_ context.Context, s sessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[s.Token]; ok {
		return &meta.ErrConflict{Type: "Session", ID: s.Token}
	}
	m.tokens[s.Token] = s
	return nil
}

func (m *memoryStore) GetSession(
	_ context.Context,
	token string,
) (sessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.tokens[token]
	if !ok {
		return s, &meta.ErrNotFound{Type: "Session"}
	}
	return s, nil
}

func (m *memoryStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *memoryStore) CreateTenant(_ context.Context, t session.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; ok {
		return &meta.ErrConflict{Type: "Tenant", ID: t.ID}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *memoryStore) AddMember(
	_ context.Context,
	tenantID string,
	userID string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[tenantID]; !ok {
		return &meta.ErrNotFound{Type: "Tenant", ID: tenantID}
	}
	if _, ok := m.users[userID]; !ok {
		return &meta.ErrNotFound{Type: "User", ID: userID}
	}
	for _, id := range m.tenantIDs[userID] {
		if id == tenantID {
			return nil
		}
	}
	m.tenantIDs[userID] = append(m.tenantIDs[userID], tenantID)
	return nil
}

func (m *memoryStore) ListTenantsForUser(
	_ context.Context,
	userID string,
) ([]session.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tenants := make([]session.Tenant, 0, len(m.tenantIDs[userID]))
	for _, id := range m.tenantIDs[userID] {
		tenants = append(tenants, m.tenants[id])
	}
	return tenants, nil
}
