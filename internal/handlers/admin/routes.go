// internal/handlers/admin/routes.go
package adminhandlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"restaurant-admin/internal/handlers"
)

// RegisterRoutes монтирует консоль на r; ожидается подроутер /admin.
func RegisterRoutes(r *mux.Router, app *handlers.AppHandlers) {
	r.HandleFunc("/api/state", StateAPIHandler(app)).Methods(http.MethodGet)

	r.HandleFunc("/orders/{id}/approve", ApproveOrderHandler(app)).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}/reject", RejectOrderHandler(app)).Methods(http.MethodPost)

	r.HandleFunc("/menu", AddMenuHandler(app)).Methods(http.MethodPost)
	r.HandleFunc("/menu/delete", DeleteMenuConfirmPageHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/menu/delete", DeleteMenuHandler(app)).Methods(http.MethodPost)

	r.HandleFunc("/staff", AddStaffHandler(app)).Methods(http.MethodPost)
	r.HandleFunc("/staff/{name}/present", StaffPresenceHandler(app, true)).Methods(http.MethodPost)
	r.HandleFunc("/staff/{name}/absent", StaffPresenceHandler(app, false)).Methods(http.MethodPost)

	r.HandleFunc("/refresh/{collection}", RefreshHandler(app)).Methods(http.MethodPost)
	r.HandleFunc("/operations/{id}/retry", RetryHandler(app)).Methods(http.MethodPost)

	r.HandleFunc("/{section}", SectionPageHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("", http.RedirectHandler("/admin/dashboard", http.StatusSeeOther).ServeHTTP).Methods(http.MethodGet)
	r.HandleFunc("/", http.RedirectHandler("/admin/dashboard", http.StatusSeeOther).ServeHTTP).Methods(http.MethodGet)
}
