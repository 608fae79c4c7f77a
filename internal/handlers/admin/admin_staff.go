// internal/handlers/admin/admin_staff.go
package adminhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"

	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/models"
)

func AddStaffHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		form := models.StaffForm{Name: r.PostForm.Get("name")}

		op, err := board.Actions.AddStaff(r.Context(), form)
		var verr *dashboard.ValidationError
		switch {
		case errors.As(err, &verr):
			app.Flash(r, handlers.FlashErrorKey, "Staff name: "+strings.ToLower(verr.Fields.Get("name")))
			http.Redirect(w, r, "/admin/staff", http.StatusSeeOther)
			return
		case err != nil:
			slog.Error("Не удалось добавить сотрудника", "name", form.Name, "error", err)
			app.Flash(r, handlers.FlashErrorKey, "Could not add the staff member: "+describe(err))
			http.Redirect(w, r, "/admin/staff", http.StatusSeeOther)
			return
		}
		app.Flash(r, handlers.FlashSuccessKey, op.Target+" added to staff.")
		http.Redirect(w, r, "/admin/staff#staff-"+slug.Make(op.Target), http.StatusSeeOther)
	}
}

// StaffPresenceHandler отмечает сотрудника на смене или отсутствующим.
func StaffPresenceHandler(app *handlers.AppHandlers, present bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		name := mux.Vars(r)["name"]
		op, err := board.Actions.SetStaffPresence(r.Context(), name, present)
		if err != nil {
			slog.Warn("Не удалось обновить статус сотрудника", "name", name, "present", present, "step", op.FailedStep(), "error", err)
		}
		http.Redirect(w, r, "/admin/staff#staff-"+slug.Make(name), http.StatusSeeOther)
	}
}
