// Package metrics provides lock-free counters for engine observability.
//
// Counters are stored in a fixed array of uint64 slots and incremented
// atomically. The write path is allocation-free; Snapshot deep-copies into a
// map for export.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import the root package or any sibling package.
//   - Expose global metric registries.
package metrics

import "sync/atomic"

// MetricID identifies a specific counter slot.
type MetricID int

const (
	MetricResolveCacheHit MetricID = iota
	MetricResolveCacheMiss
	MetricResolveCacheDegraded
	MetricResolveFailure
	MetricAuthorizeAllowed
	MetricAuthorizeDenied
	MetricRoleAssigned
	MetricLoginSuccess
	MetricLoginFailure
	MetricLogout
	MetricAccountCreated
	MetricAccountDeactivated
	MetricStaleUsersDeactivated

	MetricIDCount
)

// Config controls whether metric recording is active.
type Config struct {
	Enabled bool
}

// Metrics holds the counter slots. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a [Metrics] instance configured by cfg.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id by one.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add increments the counter for id by delta.
func (m *Metrics) Add(id MetricID, delta uint64) {
	if m == nil || !m.enabled {
		return
	}
	if id < 0 || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(delta)
}

// Get returns the current value of the counter for id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies every counter.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
