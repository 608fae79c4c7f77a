// cmd/server/routes.go
package main

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"

	"restaurant-admin/internal/config"
	"restaurant-admin/internal/handlers"
	adminhandlers "restaurant-admin/internal/handlers/admin"
	"restaurant-admin/internal/middleware"
)

func newRouter(cfg *config.Config, sm *scs.SessionManager, app *handlers.AppHandlers, authHandlers *handlers.AuthHandlers, boards middleware.DashboardProvider, loginLimiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(app.NotFoundHandler)

	r.HandleFunc("/", app.HomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	r.HandleFunc("/login", authHandlers.LoginPageHandler).Methods(http.MethodGet)
	r.Handle("/login", loginLimiter.Limit(http.HandlerFunc(authHandlers.LoginHandler))).Methods(http.MethodPost)
	r.HandleFunc("/logout", authHandlers.LogoutHandler).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin(sm, boards))
	adminhandlers.RegisterRoutes(admin, app)

	return sm.LoadAndSave(middleware.NoSurfMiddleware(r, cfg.IsProduction()))
}
