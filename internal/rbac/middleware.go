package rbac

import (
	"log/slog"
	"net/http"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current principal holds at least one capability.
func (m Middleware) RequireAny(caps ...Capability) func(http.Handler) http.Handler {
	return m.require(caps, func(p Principal) bool {
		if len(caps) == 0 {
			return true
		}
		for _, c := range caps {
			if p.Role.Can(c) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the current principal holds every capability.
func (m Middleware) RequireAll(caps ...Capability) func(http.Handler) http.Handler {
	return m.require(caps, func(p Principal) bool {
		for _, c := range caps {
			if !p.Role.Can(c) {
				return false
			}
		}
		return true
	})
}

func (m Middleware) require(caps []Capability, allowed func(Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Unauthorized(w, "authentication credentials were not provided")
				return
			}
			if !allowed(p) {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied",
						slog.Int64("user_id", p.UserID),
						slog.String("role", p.Role.String()),
						slog.Any("capabilities", caps),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
