package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/EdwinKingori/I-NeuroChat/requestctx"
)

// SessionKeyHeader carries an opaque session token.
const SessionKeyHeader = "Session-Key"

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard].
func IdentityFromContext(ctx context.Context) (*neurochat.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey{}).(*neurochat.Identity)
	return ident, ok
}

// Guard resolves the request credential through resolver and injects the
// identity into the request scope and context. The Session-Key header wins
// when both credential forms are present; a bearer Authorization header is
// the fallback. Failed resolution terminates the request with a status
// matching the failure class.
func Guard(resolver neurochat.TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := requestToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ident, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				http.Error(w, statusText(err), statusCode(err))
				return
			}

			requestctx.SetIdentity(r.Context(), ident.UserID, ident.Email, ident.Role)
			ctx := context.WithValue(r.Context(), identityContextKey{}, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestToken(r *http.Request) (string, bool) {
	if key := r.Header.Get(SessionKeyHeader); key != "" {
		return key, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, neurochat.ErrInactiveUser):
		return http.StatusForbidden
	case errors.Is(err, neurochat.ErrInsufficientPermissions):
		return http.StatusForbidden
	case errors.Is(err, neurochat.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, neurochat.ErrInvalidToken),
		errors.Is(err, neurochat.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func statusText(err error) string {
	switch statusCode(err) {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "internal error"
	}
}
