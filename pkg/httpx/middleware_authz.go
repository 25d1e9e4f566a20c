package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireAnyRole lets the request through when the verified token claims at
// least one of roles. It must run after AuthnMiddleware.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RolesFromContext(r.Context())
			for _, want := range roles {
				if slices.Contains(have, want) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeForbidden(w, roles)
		})
	}
}

// RequireAllRoles requires every listed role.
func RequireAllRoles(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RolesFromContext(r.Context())
			for _, want := range roles {
				if !slices.Contains(have, want) {
					writeForbidden(w, roles)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, roles []string) {
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "insufficient_role",
		"error_description": "requires role: " + strings.Join(roles, " or "),
	})
}
