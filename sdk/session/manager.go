package session

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	keyToken         = "token"
	keyUser          = "user"
	keyExpiresAt     = "expiresAt"
	keyTenants       = "tenants"
	keyCurrentTenant = "currentTenant"
	keySchemaVersion = "schemaVersion"

	// schemaVersion is stamped on every session written. Persisted state
	// carrying any other version (or none) is discarded when read.
	schemaVersion = "1"
)

var allKeys = []string{
	keyToken,
	keyUser,
	keyExpiresAt,
	keyTenants,
	keyCurrentTenant,
	keySchemaVersion,
}

// ErrNoSession is returned by operations that require a valid session when
// none exists.
var ErrNoSession = errors.New("no valid session exists")

// ManagerOptions represents optional Manager configuration.
type ManagerOptions struct {
	// Logger receives warnings about unreadable or discarded state. Defaults
	// to a no-op logger.
	Logger *zerolog.Logger
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Manager is the sole owner of persisted authentication and tenant state. It
// is the only component that writes to or erases its Store. Read paths never
// fail: state that cannot be read or parsed is treated as absent and, where
// noted, erased.
type Manager struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
	// readFailed records whether the store returned an error since load last
	// started. Guarded by mu.
	readFailed bool
}

// NewManager returns a Manager persisting state to the provided Store.
func NewManager(store Store, opts *ManagerOptions) *Manager {
	if opts == nil {
		opts = &ManagerOptions{}
	}
	m := &Manager{
		store:  store,
		logger: zerolog.Nop(),
		now:    opts.Now,
	}
	if opts.Logger != nil {
		m.logger = *opts.Logger
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// SetSession stores the token and user together, replacing any prior session
// unconditionally. A non-zero expiresIn is converted to an absolute expiry;
// zero means the token carries no declared lifetime. Tenant state survives
// only when the new session belongs to the same user as the one it replaces.
func (m *Manager) SetSession(
	token string,
	user User,
	expiresIn time.Duration,
) error {
	if user.ID == "" {
		return errors.New("session user has no ID")
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "error marshaling user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := map[string]string{
		keySchemaVersion: schemaVersion,
		keyToken:         token,
		keyUser:          string(userBytes),
		// An empty value reads as absent. Blanking keys in the same write as
		// the new session keeps a failed write from leaving half of it behind.
		keyExpiresAt: "",
	}
	if expiresIn != 0 {
		entries[keyExpiresAt] = strconv.FormatInt(
			toEpochMillis(m.now().Add(expiresIn)),
			10,
		)
	}
	if prior, ok := m.get(keyUser); ok {
		priorUser := User{}
		if err := json.Unmarshal([]byte(prior), &priorUser); err != nil ||
			priorUser.ID != user.ID {
			entries[keyTenants] = ""
			entries[keyCurrentTenant] = ""
		}
	}
	if err := m.store.Set(entries); err != nil {
		return errors.Wrap(err, "error storing session")
	}

	blanked := []string{}
	for k, v := range entries {
		if v == "" {
			blanked = append(blanked, k)
		}
	}
	if len(blanked) > 0 {
		m.erase(blanked...)
	}
	return nil
}

// GetSession returns the current session. The boolean result is false if
// the token or user is missing, the user cannot be parsed or the session has
// expired. An expired or partial session is erased as a side effect.
func (m *Manager) GetSession() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(true)
}

// ClearSession erases the session together with all tenant state. Clearing
// when no session exists is not an error.
func (m *Manager) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(allKeys...); err != nil {
		return errors.Wrap(err, "error clearing session")
	}
	return nil
}

// IsSessionValid returns true iff GetSession would return a session. Unlike
// GetSession, it never modifies stored state.
func (m *Manager) IsSessionValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.load(false)
	return ok
}

// IsTokenExpired reports whether a stored expiry has passed. It considers the
// expiry alone and returns false when none was ever stored.
func (m *Manager) IsTokenExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, expired := m.expiry()
	return expired
}

// GetToken returns the bearer token of the current session, if any.
func (m *Manager) GetToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.load(true)
	return s.Token, ok
}

// GetUser returns the user of the current session or nil if there is no
// valid session. A stored user that cannot be parsed is erased.
func (m *Manager) GetUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.load(true)
	if !ok {
		return nil
	}
	return &s.User
}

// GetTenantID returns the ID of the currently selected tenant or an empty
// string if none is selected.
func (m *Manager) GetTenantID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(true); !ok {
		return ""
	}
	id, _ := m.get(keyCurrentTenant)
	return id
}

// GetUserTenants returns the cached list of tenants the current user may
// access.
func (m *Manager) GetUserTenants() []Tenant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(true); !ok {
		return nil
	}
	return m.tenants()
}

// SetTenantContext caches the tenants the current user may access and
// selects one of them: the previously selected tenant if it is still in the
// list, otherwise the first. The boolean result is false when the list is
// empty and nothing was selected.
func (m *Manager) SetTenantContext(tenants []Tenant) (Tenant, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(true); !ok {
		return Tenant{}, false, ErrNoSession
	}
	if len(tenants) == 0 {
		if err := m.store.Delete(keyTenants, keyCurrentTenant); err != nil {
			return Tenant{}, false, errors.Wrap(err, "error clearing tenants")
		}
		return Tenant{}, false, nil
	}
	selected := tenants[0]
	if currentID, ok := m.get(keyCurrentTenant); ok {
		if t, found := findTenant(tenants, currentID); found {
			selected = t
		}
	}
	tenantsBytes, err := json.Marshal(tenants)
	if err != nil {
		return Tenant{}, false, errors.Wrap(err, "error marshaling tenants")
	}
	if err := m.store.Set(
		map[string]string{
			keyTenants:       string(tenantsBytes),
			keyCurrentTenant: selected.ID,
		},
	); err != nil {
		return Tenant{}, false, errors.Wrap(err, "error storing tenants")
	}
	return selected, true, nil
}

// SwitchTenant selects the specified tenant. The tenant is looked up in the
// cached tenant list only, never remotely. The boolean result is false, and
// nothing is modified, if the tenant is not in the cached list.
func (m *Manager) SwitchTenant(tenantID string) (Tenant, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(true); !ok {
		return Tenant{}, false, nil
	}
	t, found := findTenant(m.tenants(), tenantID)
	if !found {
		return Tenant{}, false, nil
	}
	if err := m.store.Set(
		map[string]string{keyCurrentTenant: t.ID},
	); err != nil {
		return Tenant{}, false, errors.Wrap(err, "error storing current tenant")
	}
	return t, true, nil
}

// load assembles the session from storage. It must be called with m.mu held.
// When heal is true, unusable state is erased.
func (m *Manager) load(heal bool) (Session, bool) {
	m.readFailed = false
	if !m.schemaCompatible(heal) {
		return Session{}, false
	}
	token, hasToken := m.get(keyToken)
	userJSON, hasUser := m.get(keyUser)
	if m.readFailed {
		if heal {
			m.erase(allKeys...)
		}
		return Session{}, false
	}
	if !hasToken && !hasUser {
		return Session{}, false
	}
	var user *User
	if hasUser {
		user = &User{}
		err := json.Unmarshal([]byte(userJSON), user)
		if err == nil && user.ID == "" {
			err = errors.New("user has no ID")
		}
		if err != nil {
			m.logger.Warn().Err(err).Msg("stored user is malformed")
			user = nil
			if heal {
				m.erase(keyUser)
			}
		}
	}
	if token == "" || user == nil {
		m.logger.Debug().Msg("discarding partial session")
		if heal {
			m.erase(allKeys...)
		}
		return Session{}, false
	}
	expiresAt, expired := m.expiry()
	if expired {
		m.logger.Debug().Msg("discarding expired session")
		if heal {
			m.erase(allKeys...)
		}
		return Session{}, false
	}
	return Session{
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
	}, true
}

// schemaCompatible returns false if stored state was written under a
// different schema version. It must be called with m.mu held.
func (m *Manager) schemaCompatible(heal bool) bool {
	version, ok := m.get(keySchemaVersion)
	if ok && version == schemaVersion {
		return true
	}
	if !ok {
		_, hasToken := m.get(keyToken)
		_, hasUser := m.get(keyUser)
		if !hasToken && !hasUser {
			return true
		}
	}
	m.logger.Warn().
		Str("found", version).
		Str("expected", schemaVersion).
		Msg("stored session has an unsupported schema version")
	if heal {
		m.erase(allKeys...)
	}
	return false
}

// expiry returns the stored expiry, if any, and whether it has passed. An
// expiry that cannot be parsed counts as passed. It must be called with m.mu
// held.
func (m *Manager) expiry() (*time.Time, bool) {
	val, ok := m.get(keyExpiresAt)
	if !ok {
		return nil, false
	}
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		m.logger.Warn().Err(err).Msg("stored session expiry is malformed")
		return nil, true
	}
	expiresAt := fromEpochMillis(millis)
	return &expiresAt, m.now().After(expiresAt)
}

func (m *Manager) tenants() []Tenant {
	val, ok := m.get(keyTenants)
	if !ok {
		return nil
	}
	tenants := []Tenant{}
	if err := json.Unmarshal([]byte(val), &tenants); err != nil {
		m.logger.Warn().Err(err).Msg("stored tenant list is malformed")
		m.erase(keyTenants, keyCurrentTenant)
		return nil
	}
	return tenants
}

func (m *Manager) get(key string) (string, bool) {
	val, ok, err := m.store.Get(key)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).
			Msg("error reading session state; treating it as absent")
		m.readFailed = true
		return "", false
	}
	if val == "" {
		return "", false
	}
	return val, ok
}

func (m *Manager) erase(keys ...string) {
	if err := m.store.Delete(keys...); err != nil {
		m.logger.Warn().Err(err).Strs("keys", keys).
			Msg("error erasing session state")
	}
}

func findTenant(tenants []Tenant, id string) (Tenant, bool) {
	for _, t := range tenants {
		if t.ID == id {
			return t, true
		}
	}
	return Tenant{}, false
}

func toEpochMillis(t time.Time) int64 {
	return t.Unix()*1000 + int64(t.Nanosecond())/int64(time.Millisecond)
}

func fromEpochMillis(millis int64) time.Time {
	return time.Unix(millis/1000, (millis%1000)*int64(time.Millisecond))
}
