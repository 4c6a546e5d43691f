// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/auth"
)

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// Auth requires "Authorization: Bearer <access token>" and stores the principal.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
			httpx.WriteAppError(w, apperr.New(apperr.CodeAuthentication, "missing bearer token"))
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.TM.ParseAccess(token)
		if err != nil {
			httpx.WriteAppError(w, apperr.New(apperr.CodeAuthentication, "invalid access token"))
			return
		}
		ctx := WithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
