package middleware

import (
	"net/http"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/models"
)

// RequireRole allows only principals holding one of roles. Must run after Auth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := map[models.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteAppError(w, apperr.New(apperr.CodeAuthentication, "authentication required"))
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				httpx.WriteAppError(w, apperr.Forbidden("role not allowed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
