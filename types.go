package neurochat

import (
	"context"
	"time"
)

// Identity is a resolved, authenticated identity. It is returned only whole:
// a failed resolution never yields a partial Identity. Active is always true
// on the success path; it is carried explicitly because the cached form of
// the identity stores it.
type Identity struct {
	UserID string
	Email  string
	Role   string
	Active bool
}

// TokenResolver is the capability every credential mechanism implements.
// The request pipeline and the RBAC engine depend only on this resolved
// identity shape, never on the credential format, so mechanisms (opaque
// session tokens today, bearer JWTs via [JWTResolver]) can be swapped or
// added without touching authorization.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*Identity, error)
}

// SessionRecord is a durable session row. Storage is the source of truth for
// sessions; the Redis cache only ever holds a derived, expiring copy.
type SessionRecord struct {
	SessionKey string
	UserID     string
	Active     bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session's expiry lies at or before now.
func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// UserRecord is the durable account row as the core sees it: read-only
// except for the last-login touch and the active flag.
type UserRecord struct {
	UserID       string
	Email        string
	Username     string
	PasswordHash string
	Active       bool
	LastLogin    time.Time
	CreatedAt    time.Time
}

// CreateUserInput is the input for [UserProvider.CreateUser].
type CreateUserInput struct {
	UserID       string
	Email        string
	Username     string
	PasswordHash string
}

// SessionProvider is the durable session collaborator. Implementations must
// be safe for concurrent use; every method honors ctx cancellation.
type SessionProvider interface {
	// SessionByKey returns the active session row for key, or
	// [ErrSessionNotFound] when no active row exists.
	SessionByKey(ctx context.Context, key string) (SessionRecord, error)
	// CreateSession inserts a new active session row.
	CreateSession(ctx context.Context, rec SessionRecord) error
	// InvalidateSession marks the session row inactive. Unknown keys return
	// [ErrSessionNotFound].
	InvalidateSession(ctx context.Context, key string) error
	// InvalidateUserSessions marks every active session of userID inactive
	// and returns how many rows changed.
	InvalidateUserSessions(ctx context.Context, userID string) (int64, error)
}

// UserProvider is the durable account collaborator.
type UserProvider interface {
	UserByID(ctx context.Context, userID string) (UserRecord, error)
	// UserByIdentifier resolves an email or username to an account.
	UserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	// TouchLastLogin updates the last-activity timestamp. Last-write-wins
	// under concurrent callers is acceptable.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	SetUserActive(ctx context.Context, userID string, active bool) error
	// DeactivateIdleSince deactivates active accounts whose last login lies
	// before cutoff and returns their user IDs so the caller can revoke
	// each account's sessions.
	DeactivateIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
}

// RoleProvider is the durable role-edge collaborator. Role and permission
// reference data is seeded once and immutable; only the user→role edge set
// changes at runtime.
type RoleProvider interface {
	// RolesByUser returns the role names currently assigned to userID. An
	// empty set is a legitimate result, not an error.
	RolesByUser(ctx context.Context, userID string) ([]string, error)
	// AssignRole adds the named role to userID as a set-union: assigning an
	// already-held role is a no-op that reports success. Unknown role names
	// return [ErrUnknownRole].
	AssignRole(ctx context.Context, userID, roleName string) error
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	SessionKey string
	UserID     string
	ExpiresAt  time.Time
}

// RegisterInput is the input for [Engine.Register]. The role is always the
// configured default; callers cannot supply one.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}
