// internal/middleware/csrf.go
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/justinas/nosurf"
)

// NoSurfMiddleware защищает CSRF-токеном все небезопасные методы.
// isProduction включает Secure у cookie и доверие к X-Forwarded-Proto от прокси.
func NoSurfMiddleware(next http.Handler, isProduction bool) http.Handler {
	csrfHandler := nosurf.New(next)

	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	// по умолчанию nosurf считает каждый запрос TLS и сверяет Origin со схемой https
	csrfHandler.SetIsTLSFunc(func(r *http.Request) bool {
		if r.TLS != nil {
			return true
		}
		return isProduction && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	})

	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("Проверка CSRF-токена не пройдена", "path", r.URL.Path, "method", r.Method, "reason", nosurf.Reason(r))
		http.Error(w, "Security check failed: missing or invalid CSRF token.", http.StatusForbidden)
	}))

	return csrfHandler
}
