package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
)

// RequirePrivileged requires an owner, manager or admin caller.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "missing token")
			return
		}
		if !actor.Privileged {
			response.Forbidden(w, "Manager access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
