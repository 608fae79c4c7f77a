// internal/handlers/pages.go
package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gosimple/slug"
	"github.com/justinas/nosurf"
	"github.com/unrolled/render"

	"restaurant-admin/internal/config"
	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/middleware"
	"restaurant-admin/internal/models"
	"restaurant-admin/web"
)

// Ключи flash-сообщений в сессии.
const (
	FlashSuccessKey = "flash_success"
	FlashErrorKey   = "flash_error"
)

type Counters struct {
	PendingOrders int
	AllOrders     int
	MenuItems     int
	OnlineStaff   int
	Staff         int
	Feedback      int
}

type PageData struct {
	SiteName        string
	CurrentYear     int
	BaseURL         string
	CurrentPath     string
	CSRFToken       string
	IsAuthenticated bool
	PageTitle       string
	FlashSuccess    string
	FlashError      string
	Errors          url.Values
	Form            interface{}

	Section    dashboard.Section
	Sections   []dashboard.Section
	State      dashboard.State
	Counters   Counters
	Sales      dashboard.SalesReport
	Pagination dashboard.Page
	PageOrders []models.Order
	Customers  []models.Customer
	Failed     []dashboard.Operation

	// ConfirmTitle — позиция меню, ожидающая подтверждения удаления.
	ConfirmTitle string
}

type AppHandlers struct {
	Config         *config.Config
	SessionManager *scs.SessionManager
	Renderer       *render.Render
}

func templateFuncs(cfg *config.Config) template.FuncMap {
	return template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"slug":     slug.Make,
		"base_url": func() string { return strings.TrimSuffix(cfg.BaseURL, "/") },
		"money":    func(a models.Amount) string { return a.String() },
		"price":    func(s string) string { return models.ParseAmount(s).String() },
		"stars": func(n int) string {
			if n < models.MinRating || n > models.MaxRating {
				n = models.DefaultRating
			}
			return strings.Repeat("★", n) + strings.Repeat("☆", models.MaxRating-n)
		},
		"since": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return time.Since(t).Truncate(time.Second).String() + " ago"
		},
		"pageQuery": func(page int) string { return "?page=" + strconv.Itoa(page) },
		"meta": func(s dashboard.State, name string) dashboard.SliceMeta {
			c, ok := dashboard.ParseCollection(name)
			if !ok {
				return dashboard.SliceMeta{}
			}
			return s.MetaFor(c)
		},
		"refreshForm": func(collection, csrf, next string) map[string]string {
			return map[string]string{"Collection": collection, "CSRFToken": csrf, "Next": next}
		},
	}
}

// NewRenderer один раз загружает встроенные шаблоны; layout оборачивает каждую страницу.
func NewRenderer(cfg *config.Config) *render.Render {
	return render.New(render.Options{
		Directory:     "templates",
		FileSystem:    &render.EmbedFileSystem{FS: web.Templates},
		Layout:        "layout",
		Extensions:    []string{".tmpl"},
		Funcs:         []template.FuncMap{templateFuncs(cfg)},
		IsDevelopment: false,
	})
}

func NewAppHandlers(cfg *config.Config, sm *scs.SessionManager) *AppHandlers {
	return &AppHandlers{
		Config:         cfg,
		SessionManager: sm,
		Renderer:       NewRenderer(cfg),
	}
}

func (h *AppHandlers) NewPageData(r *http.Request) *PageData {
	ctx := r.Context()
	return &PageData{
		SiteName:        h.Config.SiteName,
		CurrentYear:     time.Now().Year(),
		BaseURL:         strings.TrimSuffix(h.Config.BaseURL, "/"),
		CurrentPath:     r.URL.Path,
		CSRFToken:       nosurf.Token(r),
		IsAuthenticated: h.SessionManager.GetBool(ctx, middleware.SessionKeyAuthenticated),
		FlashSuccess:    h.SessionManager.PopString(ctx, FlashSuccessKey),
		FlashError:      h.SessionManager.PopString(ctx, FlashErrorKey),
		Errors:          url.Values{},
		Sections:        dashboard.Sections(),
	}
}

// NewDashboardPageData заполняет PageData из текущего снимка панели сессии.
func (h *AppHandlers) NewDashboardPageData(r *http.Request, board *dashboard.Dashboard) *PageData {
	data := h.NewPageData(r)
	s := board.Store.State()

	data.State = s
	data.Section = s.Section
	data.Counters = Counters{
		PendingOrders: len(s.Orders),
		AllOrders:     len(s.AllOrders),
		MenuItems:     len(s.Menu),
		OnlineStaff:   s.OnlineStaff(),
		Staff:         len(s.Staff),
		Feedback:      len(s.Feedback),
	}
	data.Pagination = s.Pagination()
	data.PageOrders = dashboard.PageOf(s.AllOrders, data.Pagination)
	data.Customers = dashboard.PageOf(s.Customers(), data.Pagination)
	data.Sales = dashboard.DailySales(s.AllOrders, h.Config.Dashboard.Location)
	for _, op := range s.Operations {
		if op.Status == dashboard.OperationFailed {
			data.Failed = append(data.Failed, op)
		}
	}
	return data
}

func (h *AppHandlers) RenderPage(w http.ResponseWriter, r *http.Request, status int, pageName string, data *PageData) {
	if data == nil {
		data = h.NewPageData(r)
	}
	if data.PageTitle == "" {
		data.PageTitle = h.Config.SiteName
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if err := h.Renderer.HTML(w, status, pageName, data); err != nil {
		slog.Error("Ошибка выполнения шаблона", "page", pageName, "path", r.URL.Path, "error", err)
	}
}

func (h *AppHandlers) Flash(r *http.Request, key, msg string) {
	h.SessionManager.Put(r.Context(), key, msg)
}

// HomeHandler отправляет посетителя в консоль или на страницу входа.
func (h *AppHandlers) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if h.SessionManager.GetBool(r.Context(), middleware.SessionKeyAuthenticated) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AppHandlers) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	data := h.NewPageData(r)
	data.PageTitle = "Not found"
	h.RenderPage(w, r, http.StatusNotFound, "not_found", data)
}
