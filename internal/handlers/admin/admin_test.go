package adminhandlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/bxcodec/faker/v3"
	"github.com/gorilla/mux"

	"restaurant-admin/internal/api"
	"restaurant-admin/internal/config"
	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/middleware"
)

type backend struct {
	mu    sync.Mutex
	calls []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.EscapedPath())
	b.mu.Unlock()
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	}
}

func (b *backend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (b *backend) mutated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if !strings.HasPrefix(c, http.MethodGet) {
			return true
		}
	}
	return false
}

type fixture struct {
	handler http.Handler
	backend *backend
	board   *dashboard.Dashboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Admin: config.AdminConfig{Password: "x"},
		API:   config.APIConfig{BaseURL: srv.URL, RequestTimeout: time.Second},
	}
	cfg.Dashboard.PollInterval = time.Hour
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}

	registry := dashboard.NewRegistry(api.NewClient(srv.URL, time.Second, nil), nil, nil, dashboard.Options{PollInterval: time.Hour})
	t.Cleanup(registry.Shutdown)
	board := registry.Create()

	sm := scs.New()
	app := handlers.NewAppHandlers(cfg, sm)
	r := mux.NewRouter()
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.DashboardContextKey, board)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	RegisterRoutes(admin, app)
	return &fixture{handler: sm.LoadAndSave(r), backend: b, board: board}
}

func (f *fixture) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestAddMenuInvalidFormRendersErrors(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/menu", url.Values{"title": {"  "}, "price": {"abc"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "field-error") {
		t.Fatal("field errors not rendered")
	}
	if f.backend.mutated() {
		t.Fatal("invalid form reached the ordering API")
	}
}

func TestAddMenuRedirectsToNewItem(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/menu", url.Values{
		"title": {"Pad Thai"},
		"desc":  {faker.Sentence()},
		"price": {"Rs 250"},
		"image": {"/img/pad-thai.png"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/admin/menu#item-pad-thai" {
		t.Fatalf("Location = %q", loc)
	}
	if !f.backend.called("POST /users/addmenu") {
		t.Fatal("menu item not submitted")
	}
}

func TestDeleteMenuNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/admin/menu/delete?title=Soup", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Soup") {
		t.Fatalf("confirm page: %d", rr.Code)
	}

	rr = f.do(http.MethodPost, "/admin/menu/delete", url.Values{"title": {"Soup"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.backend.mutated() {
		t.Fatal("unconfirmed delete reached the ordering API")
	}

	f.do(http.MethodPost, "/admin/menu/delete", url.Values{"title": {"Soup"}, "confirm": {"yes"}})
	if !f.backend.called("DELETE /users/deletemenu/Soup") {
		t.Fatal("confirmed delete not sent")
	}
}

func TestUnknownSectionAndCollection(t *testing.T) {
	f := newFixture(t)

	if rr := f.do(http.MethodGet, "/admin/kitchen", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown section: %d", rr.Code)
	}
	if rr := f.do(http.MethodPost, "/admin/refresh/desserts", url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown collection: %d", rr.Code)
	}
	if rr := f.do(http.MethodPost, "/admin/operations/nope/retry", url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown operation: %d", rr.Code)
	}
}

func TestSectionPageSelectsSection(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/admin/staff", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := f.board.Store.State().Section; got != dashboard.SectionStaff {
		t.Fatalf("section = %q", got)
	}
}

func TestEverySectionRenders(t *testing.T) {
	f := newFixture(t)
	for _, section := range dashboard.Sections() {
		rr := f.do(http.MethodGet, "/admin/"+string(section), nil)
		if rr.Code != http.StatusOK {
			t.Errorf("GET /admin/%s = %d: %s", section, rr.Code, rr.Body.String())
		}
	}
}

func TestApproveUnknownOrderRedirectsWithoutCalls(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/orders/ghost-42/approve", url.Values{})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin/orders" {
		t.Fatalf("approve: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if f.backend.mutated() {
		t.Fatal("approving an unknown order reached the ordering API")
	}
	if ops := f.board.Store.State().Operations; len(ops) != 0 {
		t.Fatalf("operations = %+v", ops)
	}
}

func TestBackToOnlyFollowsConsolePaths(t *testing.T) {
	f := newFixture(t)
	for next, want := range map[string]string{
		"/admin/menu":        "/admin/menu",
		"https://evil.test/": "/admin/dashboard",
		"//evil.test":        "/admin/dashboard",
		"":                   "/admin/dashboard",
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"next": {next}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if got := backTo(req, f.board); got != want {
			t.Errorf("backTo(%q) = %q, want %q", next, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	err := &dashboard.StepError{
		Step: dashboard.StepKitchen,
		Err:  &api.StatusError{Method: http.MethodPost, Path: "/users/kitchenorder", StatusCode: http.StatusBadGateway},
	}
	if got := describe(err); got != `step "kitchen" failed, the ordering API answered 502` {
		t.Fatalf("describe = %q", got)
	}
	if got := describe(errors.New("boom")); got != "boom" {
		t.Fatalf("describe = %q", got)
	}
}
