package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
)

// Recover turns a handler panic into a 500 with the INTERNAL_ERROR body.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("handler panic",
				"err", fmt.Sprint(rec),
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFrom(r.Context()),
				"stack", string(debug.Stack()),
			)
			httpx.WriteAppError(w, apperr.New(apperr.CodeInternal, "internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
