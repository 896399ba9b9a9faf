package neurochat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/internal"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// memStore is an in-memory implementation of all three durable providers,
// used to exercise the engine without a real database.
type memStore struct {
	mu       sync.Mutex
	users    map[string]UserRecord
	sessions map[string]SessionRecord
	roles    map[string][]string

	failing bool

	sessionLookups int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]UserRecord),
		sessions: make(map[string]SessionRecord),
		roles:    make(map[string][]string),
	}
}

func (m *memStore) fail() error {
	if m.failing {
		return fmt.Errorf("%w: injected", ErrStorageUnavailable)
	}
	return nil
}

func (m *memStore) SessionByKey(ctx context.Context, key string) (SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionLookups++
	if err := m.fail(); err != nil {
		return SessionRecord{}, err
	}
	rec, ok := m.sessions[key]
	if !ok || !rec.Active {
		return SessionRecord{}, ErrSessionNotFound
	}
	return rec, nil
}

func (m *memStore) CreateSession(ctx context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.sessions[rec.SessionKey] = rec
	return nil
}

func (m *memStore) InvalidateSession(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	rec, ok := m.sessions[key]
	if !ok {
		return ErrSessionNotFound
	}
	rec.Active = false
	m.sessions[key] = rec
	return nil
}

func (m *memStore) InvalidateUserSessions(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return 0, err
	}
	var n int64
	for key, rec := range m.sessions {
		if rec.UserID == userID && rec.Active {
			rec.Active = false
			m.sessions[key] = rec
			n++
		}
	}
	return n, nil
}

func (m *memStore) UserByID(ctx context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return UserRecord{}, err
	}
	u, ok := m.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) UserByIdentifier(ctx context.Context, identifier string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return UserRecord{}, err
	}
	for _, u := range m.users {
		if u.Email == identifier || u.Username == identifier {
			return u, nil
		}
	}
	return UserRecord{}, ErrUserNotFound
}

func (m *memStore) CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return UserRecord{}, err
	}
	for _, u := range m.users {
		if u.Email == input.Email || u.Username == input.Username {
			return UserRecord{}, ErrDuplicateIdentifier
		}
	}
	u := UserRecord{
		UserID:       input.UserID,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	m.users[input.UserID] = u
	return u, nil
}

func (m *memStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = at
	m.users[userID] = u
	return nil
}

func (m *memStore) SetUserActive(ctx context.Context, userID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Active = active
	m.users[userID] = u
	return nil
}

func (m *memStore) DeactivateIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	var ids []string
	for id, u := range m.users {
		if u.Active && u.LastLogin.Before(cutoff) {
			u.Active = false
			m.users[id] = u
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) RolesByUser(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	return append([]string(nil), m.roles[userID]...), nil
}

func (m *memStore) AssignRole(ctx context.Context, userID, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for _, r := range m.roles[userID] {
		if r == roleName {
			return nil
		}
	}
	m.roles[userID] = append(m.roles[userID], roleName)
	return nil
}

func (m *memStore) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionLookups
}

func (m *memStore) setFailing(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = v
}

func testRoleDefs() []RoleDefinition {
	return []RoleDefinition{
		{Name: "admin", Permissions: []string{"users.read", "users.activate", "users.promote"}},
		{Name: "support", Permissions: []string{"users.read"}},
		{Name: "user"},
	}
}

func newTestEngine(t *testing.T) (*Engine, *memStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newMemStore()

	cfg := defaultConfig()
	cfg.Session.CacheTTL = time.Hour
	cfg.Session.SessionTTL = 24 * time.Hour
	// Cheap argon2 parameters; production defaults are too slow for tests.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithSessionProvider(store).
		WithUserProvider(store).
		WithRoleProvider(store).
		WithPermissions("users.read", "users.activate", "users.promote").
		WithRoles(testRoleDefs()...).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store, mr
}

// seedUser creates an active account with a session and returns the token.
func seedUser(t *testing.T, store *memStore, userID, email, role string) string {
	t.Helper()

	store.mu.Lock()
	store.users[userID] = UserRecord{
		UserID:       userID,
		Email:        email,
		Username:     userID,
		PasswordHash: "unused",
		Active:       true,
		LastLogin:    time.Now(),
		CreatedAt:    time.Now(),
	}
	if role != "" {
		store.roles[userID] = []string{role}
	}
	store.mu.Unlock()

	key, err := internal.NewSessionKey()
	if err != nil {
		t.Fatalf("NewSessionKey() error = %v", err)
	}
	store.mu.Lock()
	store.sessions[key] = SessionRecord{
		SessionKey: key,
		UserID:     userID,
		Active:     true,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	store.mu.Unlock()

	return key
}

func TestResolveInvalidTokenShape(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	for _, token := range []string{"", "not!!valid##base64", string(make([]byte, 200))} {
		if _, err := engine.Resolve(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestResolveUnknownToken(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	key, err := internal.NewSessionKey()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Resolve(ctx, key); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrSessionNotFound", err)
	}
	if got := engine.metrics.Get(MetricResolveFailure); got != 1 {
		t.Errorf("resolve failure counter = %d, want 1", got)
	}
}

func TestResolveMissThenHit(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "support")

	first, err := engine.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	if first.UserID != "u-1" || first.Email != "alice@example.com" || first.Role != "support" || !first.Active {
		t.Fatalf("first Resolve() = %+v", first)
	}

	// The miss repaired the cache; the second resolution must not touch
	// durable storage and must return the same identity.
	before := store.lookups()
	second, err := engine.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if store.lookups() != before {
		t.Errorf("second Resolve() hit durable storage, want cache hit")
	}
	if *second != *first {
		t.Errorf("second Resolve() = %+v, want %+v", second, first)
	}

	if hits := engine.metrics.Get(MetricResolveCacheHit); hits != 1 {
		t.Errorf("cache hit counter = %d, want 1", hits)
	}
	if misses := engine.metrics.Get(MetricResolveCacheMiss); misses != 1 {
		t.Errorf("cache miss counter = %d, want 1", misses)
	}
}

func TestResolveExpiredSession(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "user")
	store.mu.Lock()
	rec := store.sessions[token]
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	store.sessions[token] = rec
	store.mu.Unlock()

	if _, err := engine.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrSessionNotFound", err)
	}
}

func TestResolveInactiveUser(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "user")
	store.mu.Lock()
	u := store.users["u-1"]
	u.Active = false
	store.users["u-1"] = u
	store.mu.Unlock()

	if _, err := engine.Resolve(ctx, token); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("Resolve() error = %v, want ErrInactiveUser", err)
	}
}

func TestResolveCachedInactive(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "user")
	if _, err := engine.Resolve(ctx, token); err != nil {
		t.Fatalf("warm Resolve() error = %v", err)
	}

	// Flip the cached entry to inactive directly; the hit path must refuse
	// without consulting storage.
	cached, err := engine.cache.Get(ctx, token)
	if err != nil {
		t.Fatalf("cache Get() error = %v", err)
	}
	cached.Active = false
	if err := engine.cache.Save(ctx, token, cached, time.Hour); err != nil {
		t.Fatalf("cache Save() error = %v", err)
	}

	before := store.lookups()
	if _, err := engine.Resolve(ctx, token); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("Resolve() error = %v, want ErrInactiveUser", err)
	}
	if store.lookups() != before {
		t.Errorf("inactive cache hit consulted durable storage")
	}
}

func TestResolveCacheDownDegrades(t *testing.T) {
	engine, store, mr := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "admin")
	mr.Close()

	ident, err := engine.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() with cache down error = %v", err)
	}
	if ident.UserID != "u-1" {
		t.Fatalf("Resolve() = %+v", ident)
	}
	if got := engine.metrics.Get(MetricResolveCacheDegraded); got != 1 {
		t.Errorf("degraded counter = %d, want 1", got)
	}
}

func TestResolveStorageDownIsFatal(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "user")
	store.setFailing(true)

	_, err := engine.Resolve(ctx, token)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("Resolve() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestResolveRepairTTLBoundedBySessionExpiry(t *testing.T) {
	engine, store, mr := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "user")
	store.mu.Lock()
	rec := store.sessions[token]
	rec.ExpiresAt = time.Now().Add(10 * time.Minute)
	store.sessions[token] = rec
	store.mu.Unlock()

	if _, err := engine.Resolve(ctx, token); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// The cache entry dies with the session even though CacheTTL is longer.
	mr.FastForward(11 * time.Minute)
	if _, err := engine.cache.Get(ctx, token); !errors.Is(err, redis.Nil) {
		t.Fatalf("cache Get() after session expiry = %v, want redis.Nil", err)
	}
}

func TestResolveDeterministic(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	token := seedUser(t, store, "u-1", "alice@example.com", "support")

	var last *Identity
	for i := 0; i < 5; i++ {
		ident, err := engine.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve() #%d error = %v", i, err)
		}
		if last != nil && *ident != *last {
			t.Fatalf("Resolve() #%d = %+v, previous %+v", i, ident, last)
		}
		last = ident
	}
}
