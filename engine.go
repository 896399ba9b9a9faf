package neurochat

import (
	"context"
	"errors"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/internal"
	"github.com/EdwinKingori/I-NeuroChat/password"
	"github.com/EdwinKingori/I-NeuroChat/permission"
	"github.com/EdwinKingori/I-NeuroChat/session"
	"github.com/redis/go-redis/v9"
)

// Engine is the authentication/authorization core. Construct it with
// [Builder.Build]; after that every method is safe for concurrent use. The
// only in-process mutable state is the metrics counters and the audit
// queue; request identity lives in the per-request scope, and everything
// else is in the shared cache and durable store.
type Engine struct {
	config       Config
	registry     *permission.Registry
	roleManager  *permission.RoleManager
	cache        *session.Store
	passwordHash *password.Hasher
	audit        *auditDispatcher
	metrics      *Metrics

	sessions SessionProvider
	users    UserProvider
	roles    RoleProvider
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot deep-copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Resolve maps an opaque session token to an authenticated, active identity.
//
// The cache tier is consulted first; a hit never touches durable storage. On
// a miss the durable session row is loaded, the associated account checked,
// the cache repaired with a bounded TTL, and the account's last-activity
// timestamp touched. Cache unavailability degrades to storage-only reads and
// never fails the request by itself.
//
// Outcomes: [ErrInvalidToken] for an empty or malformed token,
// [ErrSessionNotFound] for unknown, revoked, or expired sessions,
// [ErrInactiveUser] for deactivated accounts, [ErrStorageUnavailable] when
// the durable tier is unreachable.
func (e *Engine) Resolve(ctx context.Context, token string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if !internal.ValidSessionKey(token) {
		e.metricInc(MetricResolveFailure)
		return nil, ErrInvalidToken
	}

	cached, err := e.cache.Get(ctx, token)
	switch {
	case err == nil:
		if !cached.Active {
			e.metricInc(MetricResolveFailure)
			e.emitAudit(ctx, auditEventResolveFailure, false, cached.UserID, ErrInactiveUser, nil)
			return nil, ErrInactiveUser
		}
		e.metricInc(MetricResolveCacheHit)
		return &Identity{
			UserID: cached.UserID,
			Email:  cached.Email,
			Role:   cached.Role,
			Active: true,
		}, nil
	case errors.Is(err, redis.Nil):
		e.metricInc(MetricResolveCacheMiss)
	case errors.Is(err, session.ErrCorruptEntry):
		// Treat like a miss; the repair write below replaces the blob.
		e.metricInc(MetricResolveCacheMiss)
	case errors.Is(err, session.ErrRedisUnavailable):
		e.metricInc(MetricResolveCacheDegraded)
	default:
		e.metricInc(MetricResolveCacheDegraded)
	}

	return e.resolveFromStorage(ctx, token)
}

// ResolveToken implements [TokenResolver] for the opaque-session mechanism.
func (e *Engine) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	return e.Resolve(ctx, token)
}

func (e *Engine) resolveFromStorage(ctx context.Context, token string) (*Identity, error) {
	rec, err := e.sessions.SessionByKey(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			e.metricInc(MetricResolveFailure)
			e.emitAudit(ctx, auditEventResolveFailure, false, "", ErrSessionNotFound, nil)
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	now := time.Now()
	if !rec.Active || rec.Expired(now) {
		e.metricInc(MetricResolveFailure)
		e.emitAudit(ctx, auditEventResolveFailure, false, rec.UserID, ErrSessionNotFound, nil)
		return nil, ErrSessionNotFound
	}

	user, err := e.users.UserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// The account vanished under an otherwise valid session.
			e.metricInc(MetricResolveFailure)
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !user.Active {
		e.metricInc(MetricResolveFailure)
		e.emitAudit(ctx, auditEventResolveFailure, false, user.UserID, ErrInactiveUser, nil)
		return nil, ErrInactiveUser
	}

	ident := &Identity{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   e.primaryRole(ctx, user.UserID),
		Active: true,
	}

	// Repair-on-miss. Best-effort: a failed cache write degrades future
	// reads to storage, it never fails this request.
	_ = e.cache.Save(ctx, token, &session.CachedIdentity{
		UserID: ident.UserID,
		Email:  ident.Email,
		Role:   ident.Role,
		Active: true,
	}, e.cacheTTL(rec, now))

	// Activity bookkeeping, last-write-wins. Also best-effort.
	_ = e.users.TouchLastLogin(ctx, user.UserID, now)

	return ident, nil
}

// cacheTTL bounds the repair write by both the configured cache TTL and the
// session's own remaining lifetime, so a cache entry can never outlive the
// session it is derived from.
func (e *Engine) cacheTTL(rec SessionRecord, now time.Time) time.Duration {
	ttl := e.config.Session.CacheTTL
	if remaining := rec.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	return ttl
}

// primaryRole fetches the user's role label for identity metadata. The label
// is advisory (logging, display); authorization always recomputes from the
// live role set. Failure here degrades to an empty label.
func (e *Engine) primaryRole(ctx context.Context, userID string) string {
	roles, err := e.roles.RolesByUser(ctx, userID)
	if err != nil || len(roles) == 0 {
		return ""
	}
	return roles[0]
}

// CachePing reports cache-tier availability and latency, for health checks.
func (e *Engine) CachePing(ctx context.Context) (time.Duration, error) {
	if e == nil || e.cache == nil {
		return 0, ErrEngineNotReady
	}
	return e.cache.Ping(ctx)
}
