package middleware

import (
	"net/http"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
)

// RequirePermission enforces the named permission for the wrapped handler.
// Mount it inside [Guard]: it reads the identity Guard injected and asks the
// engine for a fresh authorization decision on every request.
func RequirePermission(engine *neurochat.Engine, permissionName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := engine.Authorize(r.Context(), ident.UserID, permissionName); err != nil {
				http.Error(w, statusText(err), statusCode(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
