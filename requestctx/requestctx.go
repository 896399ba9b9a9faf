// Package requestctx holds request-scoped identity and tracing fields so that
// any code running on behalf of one request, including asynchronous log
// emission, can read them without receiving them as explicit arguments.
//
// A scope is created at request entry with [Begin], enriched with identity
// after authentication via [SetIdentity], read through [Current], and released
// with [End]. Each scope is private to one request's context chain: two
// requests executing concurrently never observe each other's values, because
// the scope state lives inside the request's own [context.Context].
//
// Reads and writes on a single scope are safe from multiple goroutines. The
// audit dispatcher reads scopes asynchronously, after the handler may have
// already moved on.
package requestctx

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Scope is a snapshot of the active request scope's fields. The zero value
// is the unauthenticated, no-trace placeholder returned outside any scope.
type Scope struct {
	TraceID string
	UserID  string
	Email   string
	Role    string
}

// Authenticated reports whether an identity has been attached to the scope.
func (s Scope) Authenticated() bool {
	return s.UserID != ""
}

type scopeKey struct{}

// state is the mutable per-request cell. It is shared by every context
// derived from the one returned by Begin, which is what lets identity set
// after authentication become visible to readers holding earlier contexts
// of the same request.
type state struct {
	mu     sync.RWMutex
	fields Scope
	ended  bool
}

// Begin opens a new scope on ctx, seeded with traceID. When traceID is empty
// a fresh one is generated. The returned context must be used for all work
// done on behalf of the request.
func Begin(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}

	st := &state{
		fields: Scope{TraceID: traceID},
	}

	return context.WithValue(ctx, scopeKey{}, st)
}

// SetIdentity attaches the resolved identity fields to the active scope.
// Subsequent [Current] calls within the same scope return these values; other
// scopes are unaffected. Outside any scope this is a no-op: absence of a
// scope is not an error.
func SetIdentity(ctx context.Context, userID, email, role string) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ended {
		return
	}
	st.fields.UserID = userID
	st.fields.Email = email
	st.fields.Role = role
}

// Current returns the active scope's fields. Called outside any scope, or
// after [End], it returns the zero [Scope] placeholder. Unauthenticated
// contexts are valid, not an error.
func Current(ctx context.Context) Scope {
	st := stateFrom(ctx)
	if st == nil {
		return Scope{}
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.ended {
		return Scope{}
	}
	return st.fields
}

// TraceID returns the active scope's trace identifier, or "" outside any scope.
func TraceID(ctx context.Context) string {
	return Current(ctx).TraceID
}

// End releases the scope. Callers should arrange for End to run even when
// request handling fails, typically with defer at request entry. Reads after
// End observe the placeholder scope.
func End(ctx context.Context) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.ended = true
	st.fields = Scope{}
}

func stateFrom(ctx context.Context) *state {
	if ctx == nil {
		return nil
	}
	st, _ := ctx.Value(scopeKey{}).(*state)
	return st
}
