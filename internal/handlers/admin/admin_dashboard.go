// internal/handlers/admin/admin_dashboard.go
package adminhandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/middleware"
)

var sectionTitles = map[dashboard.Section]string{
	dashboard.SectionDashboard:  "Overview",
	dashboard.SectionOrders:     "Pending orders",
	dashboard.SectionAnalytics:  "Sales analytics",
	dashboard.SectionMenu:       "Menu",
	dashboard.SectionStaff:      "Staff",
	dashboard.SectionCustomers:  "Customers",
	dashboard.SectionFeedback:   "Feedback",
	dashboard.SectionOperations: "Operations",
}

func boardFrom(w http.ResponseWriter, r *http.Request) (*dashboard.Dashboard, bool) {
	board, ok := middleware.DashboardFromContext(r.Context())
	if !ok {
		slog.Error("Обработчик админки вызван без панели в контексте", "path", r.URL.Path)
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
	return board, ok
}

// SectionPageHandler выбирает раздел из пути и рисует его по текущему снимку.
func SectionPageHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		section, ok := dashboard.ParseSection(mux.Vars(r)["section"])
		if !ok {
			app.NotFoundHandler(w, r)
			return
		}

		board.Store.Dispatch(dashboard.SectionSelected{Section: section})
		if raw := r.URL.Query().Get("page"); raw != "" {
			page, _ := strconv.Atoi(raw)
			board.Store.Dispatch(dashboard.PageSelected{Page: page})
		}

		data := app.NewDashboardPageData(r, board)
		data.PageTitle = sectionTitles[section] + " | " + app.Config.SiteName
		app.RenderPage(w, r, http.StatusOK, "admin/"+string(section), data)
	}
}

type sliceStatus struct {
	Seq       uint64    `json:"seq"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type stateResponse struct {
	Dashboard   string                 `json:"dashboard"`
	State       dashboard.State        `json:"state"`
	Collections map[string]sliceStatus `json:"collections"`
	Sales       dashboard.SalesReport  `json:"sales"`
	Pagination  dashboard.Page         `json:"pagination"`
}

// StateAPIHandler отдаёт снимок состояния сессии в JSON.
func StateAPIHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		s := board.Store.State()
		resp := stateResponse{
			Dashboard:   board.ID,
			State:       s,
			Collections: make(map[string]sliceStatus),
			Sales:       dashboard.DailySales(s.AllOrders, app.Config.Dashboard.Location),
			Pagination:  s.Pagination(),
		}
		for _, c := range dashboard.Collections() {
			m := s.MetaFor(c)
			resp.Collections[c.String()] = sliceStatus{Seq: m.Seq, Loading: m.Loading, Error: m.Err, FetchedAt: m.FetchedAt}
		}
		if err := app.Renderer.JSON(w, http.StatusOK, resp); err != nil {
			slog.Error("Не удалось записать JSON состояния", "error", err)
		}
	}
}

// RefreshHandler перечитывает одну коллекцию по запросу. Персонал и отзывы обновляются только так.
func RefreshHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		c, ok := dashboard.ParseCollection(mux.Vars(r)["collection"])
		if !ok {
			app.NotFoundHandler(w, r)
			return
		}
		if err := board.Sync.Refresh(r.Context(), c); err != nil {
			slog.Error("Ручное обновление не удалось", "dashboard", board.ID, "collection", c.String(), "error", err)
			app.Flash(r, handlers.FlashErrorKey, "Could not refresh "+c.String()+": "+describe(err))
		}
		http.Redirect(w, r, backTo(r, board), http.StatusSeeOther)
	}
}

// RetryHandler продолжает неудачную операцию с шага, на котором она остановилась.
func RetryHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		op, err := board.Actions.Retry(r.Context(), mux.Vars(r)["id"])
		switch {
		case err == nil:
			app.Flash(r, handlers.FlashSuccessKey, operationLabel(op)+" completed.")
		case isNotFound(err):
			app.NotFoundHandler(w, r)
			return
		default:
			app.Flash(r, handlers.FlashErrorKey, operationLabel(op)+" failed again: "+describe(err))
		}
		http.Redirect(w, r, backTo(r, board), http.StatusSeeOther)
	}
}

// backTo возвращает поле "next", если оно ведёт внутрь консоли, иначе текущий раздел.
func backTo(r *http.Request, board *dashboard.Dashboard) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/admin/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/admin/" + string(board.Store.State().Section)
}
