// Package neurochat provides the authentication and authorization core of
// the I-NeuroChat service: opaque session tokens resolved cache-first against
// Redis with a durable-storage fallback, role-based permission enforcement,
// and request-scoped identity propagation for downstream consumers such as
// asynchronous logging.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// neurochat is the public surface. It exposes [Engine], [Builder], [Config],
// the provider interfaces callers implement against their database, and value
// types (Identity, AuditEvent, MetricsSnapshot). Cache encoding, RBAC bit
// assignment, and key generation live in sub-packages and internal/.
//
// The HTTP layer is a collaborator, not part of the core: the middleware
// package maps Engine outcomes to transport responses, and any router can do
// the same with the sentinel errors in errors.go.
//
// # What this package must NOT do
//
//   - Own durable storage. Sessions, users, and role edges live behind
//     [SessionProvider], [UserProvider], and [RoleProvider]; sqlstore ships a
//     database/sql implementation but any backend can be wired.
//   - Treat the cache as a source of truth. Every cache entry is derived,
//     TTL-bounded, and rebuilt from storage on miss.
//   - Return partial identity. Resolution is all-or-nothing.
package neurochat
