// internal/handlers/auth.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"restaurant-admin/internal/auth"
	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/middleware"
	"restaurant-admin/internal/models"
	"restaurant-admin/internal/validation"
)

// Boards — часть реестра панелей, нужная входу и выходу.
type Boards interface {
	Create() *dashboard.Dashboard
	Remove(id string)
}

type AuthHandlers struct {
	SessionManager *scs.SessionManager
	App            *AppHandlers
	Password       auth.AdminPassword
	Boards         Boards
}

func NewAuthHandlers(sm *scs.SessionManager, app *AppHandlers, password auth.AdminPassword, boards Boards) *AuthHandlers {
	return &AuthHandlers{
		SessionManager: sm,
		App:            app,
		Password:       password,
		Boards:         boards,
	}
}

func (h *AuthHandlers) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	if h.SessionManager.GetBool(r.Context(), middleware.SessionKeyAuthenticated) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	data := h.App.NewPageData(r)
	data.PageTitle = "Admin login"
	data.Form = models.LoginForm{}
	h.App.RenderPage(w, r, http.StatusOK, "login", data)
}

func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("Не удалось разобрать форму входа", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := models.LoginForm{Password: r.PostForm.Get("password")}

	if errs := validation.ValidateStruct(form); len(errs) > 0 {
		data := h.App.NewPageData(r)
		data.PageTitle = "Admin login"
		data.Errors = errs
		h.App.RenderPage(w, r, http.StatusBadRequest, "login", data)
		return
	}

	if !h.Password.Check(form.Password) {
		slog.Warn("Неудачная попытка входа администратора", "remote_addr", r.RemoteAddr)
		data := h.App.NewPageData(r)
		data.PageTitle = "Admin login"
		data.Errors.Add("general", "Wrong password.")
		h.App.RenderPage(w, r, http.StatusUnauthorized, "login", data)
		return
	}

	// повторный вход в той же сессии: старая панель больше не нужна
	if oldID := h.SessionManager.GetString(r.Context(), middleware.SessionKeyDashboardID); oldID != "" {
		h.Boards.Remove(oldID)
	}

	// новый токен при смене привилегий
	if err := h.SessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("Не удалось обновить токен сессии", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	board := h.Boards.Create()
	h.SessionManager.Put(r.Context(), middleware.SessionKeyAuthenticated, true)
	h.SessionManager.Put(r.Context(), middleware.SessionKeyDashboardID, board.ID)
	h.SessionManager.Put(r.Context(), FlashSuccessKey, "Welcome back.")

	slog.Info("Администратор вошёл", "dashboard", board.ID)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// LogoutHandler останавливает опрос панели до уничтожения сессии.
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	id := h.SessionManager.GetString(r.Context(), middleware.SessionKeyDashboardID)
	if id != "" {
		h.Boards.Remove(id)
	}

	if err := h.SessionManager.Destroy(r.Context()); err != nil {
		slog.Error("Не удалось уничтожить сессию при выходе", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	slog.Info("Администратор вышел", "dashboard", id)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
