// Package permission provides the bitmask-backed RBAC reference data used by
// authorization checks: a registry assigning each permission name a stable bit
// position, and a role manager composing role masks from those bits.
//
// Roles and permissions are immutable reference data. Both the registry and
// the role manager are populated once during engine construction from the
// seeded role/permission definitions and then frozen; after Freeze every read
// is safe from any goroutine.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. The per-user
// role set is NOT stored here; it lives in durable storage and is loaded per
// authorization decision; this package only answers "which bits does role R
// grant" and "which bit is permission P".
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import the root package, jwt, or session.
//   - Accept registrations after Freeze.
package permission
