package neurochat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/internal"
	"github.com/EdwinKingori/I-NeuroChat/session"
	"github.com/google/uuid"
)

// Register creates a new account with the configured default role and
// returns its user ID. Email and username are lowercased before storage so
// logins by either identifier are case-insensitive. Duplicate email or
// username surfaces as [ErrDuplicateIdentifier]; an unacceptable password
// as [ErrWeakPassword].
func (e *Engine) Register(ctx context.Context, in RegisterInput) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if email == "" || username == "" {
		return "", ErrInvalidCredentials
	}

	hash, err := e.passwordHash.Hash(in.Password)
	if err != nil {
		// Hasher config was validated at Build; a failure here means the
		// password itself was rejected.
		return "", fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	userID := uuid.NewString()
	if _, err := e.users.CreateUser(ctx, CreateUserInput{
		UserID:       userID,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}); err != nil {
		return "", err
	}

	if err := e.roles.AssignRole(ctx, userID, e.config.Account.DefaultRole); err != nil {
		return "", err
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditEventRegister, true, userID, nil, nil)
	return userID, nil
}

// Login authenticates by email or username plus password and mints a new
// session. A remembered login uses the longer RememberTTL; otherwise
// SessionTTL applies. Unknown identifier and wrong password are
// indistinguishable to the caller ([ErrInvalidCredentials]); a deactivated
// account is reported as [ErrInactiveUser].
func (e *Engine) Login(ctx context.Context, identifier, password string, remember bool) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.UserByIdentifier(ctx, strings.ToLower(strings.TrimSpace(identifier)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.passwordHash.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrInactiveUser, nil)
		return nil, ErrInactiveUser
	}

	ttl := e.config.Session.SessionTTL
	if remember {
		ttl = e.config.Session.RememberTTL
	}

	now := time.Now()
	key, err := internal.NewSessionKey()
	if err != nil {
		return nil, err
	}
	rec := SessionRecord{
		SessionKey: key,
		UserID:     user.UserID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		Active:     true,
	}
	if err := e.sessions.CreateSession(ctx, rec); err != nil {
		return nil, err
	}

	// Prime the cache so the first Resolve hits. Best-effort.
	_ = e.cache.Save(ctx, key, &session.CachedIdentity{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   e.primaryRole(ctx, user.UserID),
		Active: true,
	}, e.cacheTTL(rec, now))

	_ = e.users.TouchLastLogin(ctx, user.UserID, now)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, nil,
		map[string]string{"remember": strconv.FormatBool(remember)})

	return &LoginResult{
		SessionKey: key,
		UserID:     user.UserID,
		ExpiresAt:  rec.ExpiresAt,
	}, nil
}

// Logout revokes the session behind token. The durable row is invalidated
// before the cache entry is deleted, so a failed cache delete leaves at
// worst a stale entry bounded by its own TTL rather than a resurrectable
// session. Logging out an unknown token is a no-op.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if !internal.ValidSessionKey(token) {
		return ErrInvalidToken
	}

	err := e.sessions.InvalidateSession(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	_ = e.cache.Delete(ctx, token)

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", nil, nil)
	return nil
}

// DeactivateUser disables the account and invalidates all of its durable
// sessions. Cache entries minted before the deactivation are not chased
// individually; they age out within one cache TTL, which bounds the window
// in which a previously resolved token still reads as active.
func (e *Engine) DeactivateUser(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.users.SetUserActive(ctx, userID, false); err != nil {
		return err
	}
	if _, err := e.sessions.InvalidateUserSessions(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricAccountDeactivated)
	e.emitAudit(ctx, auditEventDeactivated, true, userID, nil, nil)
	return nil
}

// ActivateUser re-enables a deactivated account. Existing sessions stay
// revoked; the user logs in again.
func (e *Engine) ActivateUser(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.users.SetUserActive(ctx, userID, true); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventActivated, true, userID, nil, nil)
	return nil
}

// DeactivateStaleUsers disables every active account whose last activity is
// older than maxIdle and invalidates their sessions. It is meant to be run
// from a host scheduler (cron, ticker goroutine) rather than inline with
// request traffic.
//
// Returns the number of accounts fully processed: deactivated with their
// sessions revoked. On error that count covers the accounts revoked before
// the failure. Every matched account is already deactivated in storage at
// that point, so any session left unrevoked still resolves to inactive and
// is refused.
func (e *Engine) DeactivateStaleUsers(ctx context.Context, maxIdle time.Duration) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	cutoff := time.Now().Add(-maxIdle)
	ids, err := e.users.DeactivateIdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		if _, err := e.sessions.InvalidateUserSessions(ctx, id); err != nil {
			if processed > 0 {
				e.metrics.Add(MetricStaleUsersDeactivated, uint64(processed))
			}
			return processed, err
		}
		processed++
	}

	if processed > 0 {
		e.metrics.Add(MetricStaleUsersDeactivated, uint64(processed))
		e.emitAudit(ctx, auditEventStaleDeactivated, true, "", nil,
			map[string]string{"count": strconv.Itoa(processed)})
	}
	return processed, nil
}
