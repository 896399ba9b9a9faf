package middleware

import (
	"net/http"
	"strconv"
	"time"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/EdwinKingori/I-NeuroChat/requestctx"
)

// RequestLog emits one audit event per completed request to sink. Identity
// fields come from the request scope at the time the handler finishes, so
// requests authenticated by an inner Guard are logged with their user.
//
// Mount inside [Trace] and outside [Guard].
func RequestLog(sink neurochat.AuditSink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sink == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			scope := requestctx.Current(r.Context())
			sink.Emit(r.Context(), neurochat.AuditEvent{
				Timestamp: time.Now(),
				EventType: "http.request",
				TraceID:   scope.TraceID,
				UserID:    scope.UserID,
				Email:     scope.Email,
				Role:      scope.Role,
				IP:        clientAddr(r),
				Success:   rec.status < http.StatusInternalServerError,
				Metadata: map[string]string{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      strconv.Itoa(rec.status),
					"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
				},
			})
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
