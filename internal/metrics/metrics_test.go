package metrics

import (
	"sync"
	"testing"
)

func TestIncAndSnapshot(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricResolveCacheHit)
	m.Inc(MetricResolveCacheHit)
	m.Add(MetricStaleUsersDeactivated, 7)

	if got := m.Get(MetricResolveCacheHit); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricResolveCacheHit] != 2 {
		t.Fatalf("snapshot hit count wrong: %d", snap.Counters[MetricResolveCacheHit])
	}
	if snap.Counters[MetricStaleUsersDeactivated] != 7 {
		t.Fatalf("snapshot add count wrong: %d", snap.Counters[MetricStaleUsersDeactivated])
	}

	// Snapshot is a copy, not a view.
	m.Inc(MetricResolveCacheHit)
	if snap.Counters[MetricResolveCacheHit] != 2 {
		t.Fatal("snapshot mutated after the fact")
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false})

	m.Inc(MetricLoginSuccess)
	if m.Get(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics recorded a value")
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("disabled snapshot not empty")
	}
}

func TestOutOfRangeIDsIgnored(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricID(-1))
	m.Inc(MetricIDCount)
	if m.Get(MetricID(-1)) != 0 || m.Get(MetricIDCount) != 0 {
		t.Fatal("out-of-range id recorded")
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := New(Config{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricAuthorizeAllowed)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(MetricAuthorizeAllowed); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
}
