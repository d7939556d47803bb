package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a valid access token and stores the
// caller as an employee.Actor in the request context. It runs after
// jwtauth.Verifier. The caller is privileged when the token says so or when
// their employee record is flagged privileged.
func AuthRequired(ja *jwtauth.JWTAuth, employees employee.EmployeeRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "missing token")
				return
			}

			m, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "invalid token")
				return
			}
			claims, err := jwt.ClaimsFromMap(m)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			actor := employee.Actor{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Privileged: claims.Privileged(),
			}
			if !actor.Privileged && actor.EmployeeID != "" && employees != nil {
				emp, err := employees.GetByID(r.Context(), actor.EmployeeID)
				switch {
				case errors.Is(err, employee.ErrEmployeeNotFound):
				case err != nil:
					response.HandleError(w, err)
					return
				default:
					actor.Privileged = emp.IsPrivileged
				}
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithActor(ctx context.Context, actor employee.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller.
func ActorFromContext(ctx context.Context) (employee.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(employee.Actor)
	return actor, ok
}
