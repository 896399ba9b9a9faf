// Package middleware exposes HTTP adapters for request-scope management and
// credential enforcement built on top of the neurochat engine.
//
// # Guards
//
//   - [Trace] — opens the per-request scope and propagates the trace ID.
//   - [Guard] — resolves the request credential to an identity.
//   - [RequirePermission] — enforces a named permission for the wrapped handler.
//
// Guard reads the Session-Key header first and falls back to an
// Authorization bearer token, calls the configured resolver, and injects the
// resolved identity into both the request scope and the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement authentication or authorization logic itself.
//
// # What this package must NOT do
//
//   - Inspect credential internals (delegates to the resolver).
//   - Access Redis or the database (the engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the engine.
package middleware
