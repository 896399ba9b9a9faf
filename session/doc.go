// Package session implements the fast tier of session resolution: a
// Redis-backed cache mapping opaque session tokens to resolved identities.
//
// The cache is a strict performance optimization over durable storage. It is
// never the source of truth: entries are written only on a successful durable
// lookup (repair-on-miss) or at login (write-through), always with a bounded
// TTL, so no cached entry can outlive a deliberate revocation by more than
// one expiry interval.
//
// # Architecture boundaries
//
// Writes are atomic single-key SETs, never multi-step, so an abandoned
// request cannot leave the cache partially written. Keys are namespaced per
// session token; tokens are high-entropy random values, so keys are neither
// predictable nor enumerable.
//
// # What this package must NOT do
//
//   - Touch durable storage, or decide authentication outcomes.
//   - Store anything but the derived identity blob.
package session
