// internal/handlers/admin/admin_menu.go
package adminhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/models"
)

func menuFormFrom(r *http.Request) models.MenuForm {
	rating, _ := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("rating")))
	return models.MenuForm{
		Title:  r.PostForm.Get("title"),
		Desc:   r.PostForm.Get("desc"),
		Price:  r.PostForm.Get("price"),
		Image:  r.PostForm.Get("image"),
		Rating: rating,
	}
}

// AddMenuHandler при ошибках валидации заново рисует меню с ошибками полей; запрос не отправляется.
func AddMenuHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		form := menuFormFrom(r)

		op, err := board.Actions.AddMenu(r.Context(), form)
		var verr *dashboard.ValidationError
		switch {
		case errors.As(err, &verr):
			board.Store.Dispatch(dashboard.SectionSelected{Section: dashboard.SectionMenu})
			data := app.NewDashboardPageData(r, board)
			data.PageTitle = sectionTitles[dashboard.SectionMenu] + " | " + app.Config.SiteName
			data.Form = form
			data.Errors = verr.Fields
			data.FlashError = "Please fill in every required field."
			app.RenderPage(w, r, http.StatusUnprocessableEntity, "admin/menu", data)
			return
		case err != nil:
			slog.Error("Не удалось добавить позицию меню", "title", form.Title, "error", err)
			app.Flash(r, handlers.FlashErrorKey, "Could not add the menu item: "+describe(err))
			http.Redirect(w, r, "/admin/menu", http.StatusSeeOther)
			return
		}

		app.Flash(r, handlers.FlashSuccessKey, "Menu item \""+op.Target+"\" added.")
		http.Redirect(w, r, "/admin/menu#item-"+slug.Make(op.Target), http.StatusSeeOther)
	}
}

// DeleteMenuConfirmPageHandler спрашивает подтверждение перед удалением.
func DeleteMenuConfirmPageHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		title := r.URL.Query().Get("title")
		if title == "" {
			http.Redirect(w, r, "/admin/menu", http.StatusSeeOther)
			return
		}
		data := app.NewDashboardPageData(r, board)
		data.PageTitle = "Delete menu item | " + app.Config.SiteName
		data.ConfirmTitle = title
		app.RenderPage(w, r, http.StatusOK, "admin/menu_delete", data)
	}
}

func DeleteMenuHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		title := r.PostForm.Get("title")
		confirmed := r.PostForm.Get("confirm") == "yes"

		_, err := board.Actions.DeleteMenu(r.Context(), title, confirmed)
		switch {
		case errors.Is(err, dashboard.ErrNotConfirmed):
			app.Flash(r, handlers.FlashErrorKey, "Deletion of \""+title+"\" was not confirmed.")
		case err != nil:
			slog.Error("Не удалось удалить позицию меню", "title", title, "error", err)
			app.Flash(r, handlers.FlashErrorKey, "Could not delete the menu item: "+describe(err))
		default:
			app.Flash(r, handlers.FlashSuccessKey, "Menu item \""+title+"\" deleted.")
		}
		http.Redirect(w, r, "/admin/menu", http.StatusSeeOther)
	}
}
