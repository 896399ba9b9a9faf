package middleware

import (
	"net"
	"net/http"
	"strings"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/EdwinKingori/I-NeuroChat/requestctx"
)

const traceHeader = "X-Request-ID"

// Trace opens a request scope for every request, honoring an inbound
// X-Request-ID header and echoing the effective trace ID back in the
// response. The scope is released when the handler returns.
//
// Mount Trace outermost: everything downstream (Guard, handlers, audit
// events) reads the scope it opens.
func Trace() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.Begin(r.Context(), r.Header.Get(traceHeader))
			defer requestctx.End(ctx)

			ctx = neurochat.WithClientIP(ctx, clientAddr(r))

			w.Header().Set(traceHeader, requestctx.Current(ctx).TraceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientAddr prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
