package session

// CachedIdentity is the derived Session→User resolution held in the cache.
// It carries exactly what the resolver needs to answer a cache hit without
// touching durable storage: the user identifier, the active flag, and the
// role/email metadata that was cheaply available at repair time.
//
// Role and Email are mutable in storage; their staleness here is bounded by
// the cache TTL, which is the accepted trade-off of the two-tier design.
type CachedIdentity struct {
	UserID string
	Email  string
	Role   string
	Active bool
}
