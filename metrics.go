package neurochat

import internalmetrics "github.com/EdwinKingori/I-NeuroChat/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricResolveCacheHit counts token resolutions answered by the cache tier.
	MetricResolveCacheHit = internalmetrics.MetricResolveCacheHit
	// MetricResolveCacheMiss counts resolutions that fell through to storage.
	MetricResolveCacheMiss = internalmetrics.MetricResolveCacheMiss
	// MetricResolveCacheDegraded counts resolutions served storage-only
	// because the cache tier was unreachable.
	MetricResolveCacheDegraded = internalmetrics.MetricResolveCacheDegraded
	// MetricResolveFailure counts failed resolutions (invalid, unknown, inactive).
	MetricResolveFailure = internalmetrics.MetricResolveFailure
	// MetricAuthorizeAllowed counts permission checks that passed.
	MetricAuthorizeAllowed = internalmetrics.MetricAuthorizeAllowed
	// MetricAuthorizeDenied counts permission checks that were denied.
	MetricAuthorizeDenied = internalmetrics.MetricAuthorizeDenied
	// MetricRoleAssigned counts role-edge writes, including idempotent no-ops.
	MetricRoleAssigned = internalmetrics.MetricRoleAssigned
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLogout counts session invalidations via Logout.
	MetricLogout = internalmetrics.MetricLogout
	// MetricAccountCreated counts successful registrations.
	MetricAccountCreated = internalmetrics.MetricAccountCreated
	// MetricAccountDeactivated counts explicit account deactivations.
	MetricAccountDeactivated = internalmetrics.MetricAccountDeactivated
	// MetricStaleUsersDeactivated counts accounts swept by DeactivateStaleUsers.
	MetricStaleUsersDeactivated = internalmetrics.MetricStaleUsersDeactivated
)

// Metrics holds atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
