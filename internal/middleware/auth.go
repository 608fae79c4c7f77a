package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"restaurant-admin/internal/dashboard"
)

type contextKey string

const DashboardContextKey contextKey = "dashboard"

// Ключи сессии, общие с обработчиками входа.
const (
	SessionKeyAuthenticated = "admin_authenticated"
	SessionKeyDashboardID   = "dashboard_id"
)

// DashboardProvider реализует *dashboard.Registry.
type DashboardProvider interface {
	Ensure(id string) (*dashboard.Dashboard, bool)
}

// RequireAdmin пропускает только вошедшие сессии и кладёт их панель в контекст.
// Панель, остановленная по простою, запускается заново под тем же id.
func RequireAdmin(sessionManager *scs.SessionManager, boards DashboardProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !sessionManager.GetBool(ctx, SessionKeyAuthenticated) {
				slog.Warn("Доступ запрещён: администратор не вошёл", "path", r.URL.Path)
				if strings.HasPrefix(r.URL.Path, "/admin/api/") {
					http.Error(w, "authentication required", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			id := sessionManager.GetString(ctx, SessionKeyDashboardID)
			if id == "" {
				id = uuid.NewString()
				sessionManager.Put(ctx, SessionKeyDashboardID, id)
			}
			board, created := boards.Ensure(id)
			if created {
				slog.Info("RequireAdmin: панель для сессии (пере)запущена", "dashboard", id)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, DashboardContextKey, board)))
		})
	}
}

func DashboardFromContext(ctx context.Context) (*dashboard.Dashboard, bool) {
	board, ok := ctx.Value(DashboardContextKey).(*dashboard.Dashboard)
	return board, ok && board != nil
}
