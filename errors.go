package neurochat

import "errors"

var (
	// ErrInvalidToken is returned for an absent or malformed credential.
	// It is an expected unauthenticated outcome, not a server fault.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionNotFound is returned when a token is unknown, revoked, or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInactiveUser is returned when the credential is structurally valid
	// but the account is deactivated.
	ErrInactiveUser = errors.New("user account deactivated")
	// ErrInsufficientPermissions is returned when an authenticated user lacks
	// the required permission grant.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	// ErrUnknownRole is returned when a role assignment references a name not
	// present in the seeded reference data. A caller/input error.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUserNotFound is returned by user lookups for absent identifiers.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Login for a wrong identifier or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateIdentifier is returned by Register when the email or
	// username is already taken.
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrWeakPassword is returned by Register when the supplied password
	// fails the hasher's minimum requirements. A caller/input error.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrStorageUnavailable wraps transient durable-storage failures. Fatal
	// for the request it occurs in, and distinct from any authorization denial.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
