package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/bxcodec/faker/v3"

	"restaurant-admin/internal/api"
	"restaurant-admin/internal/auth"
	"restaurant-admin/internal/config"
	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
	"restaurant-admin/internal/middleware"
)

const testPassword = "kitchen-open"

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// orderingAPI stands in for the restaurant ordering backend.
type orderingAPI struct {
	mu       sync.Mutex
	calls    []string
	customer string
}

func (o *orderingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	o.calls = append(o.calls, r.Method+" "+r.URL.Path)
	o.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/users/ownerorders", "/users/adminorders":
		if r.Method == http.MethodGet {
			// o3 comes first on purpose; table_no arrives as a number
			io.WriteString(w, `[
				{"orderid":"o3","name":"Dana","table_no":2,"total":"4.00","created_at":"2025-03-01T08:00:00Z"},
				{"orderid":"o1","name":"`+o.customer+`","table_no":"7","total":"12.50","created_at":"2025-03-01T09:00:00Z"},
				{"orderid":"o2","name":"Arman","total":6,"created_at":"2025-03-01T10:00:00Z"}
			]`)
			return
		}
	case "/users/menu", "/users/staff", "/users/feedback":
		if r.Method == http.MethodGet {
			io.WriteString(w, `[]`)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (o *orderingAPI) mutations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, c := range o.calls {
		if !strings.HasPrefix(c, http.MethodGet) {
			out = append(out, c)
		}
	}
	return out
}

type testApp struct {
	server   *httptest.Server
	registry *dashboard.Registry
	backend  *orderingAPI
}

func newTestApp(t *testing.T, loginBurst int) *testApp {
	t.Helper()

	backend := &orderingAPI{customer: faker.FirstName()}
	apiServer := httptest.NewServer(backend)
	t.Cleanup(apiServer.Close)

	cfg := &config.Config{
		Admin: config.AdminConfig{Password: testPassword},
		API:   config.APIConfig{BaseURL: apiServer.URL, RequestTimeout: 2 * time.Second},
	}
	cfg.Admin.LoginBurst = loginBurst
	cfg.Admin.LoginRPS = 0.001
	cfg.Dashboard.PollInterval = time.Hour
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	sm := scs.New()
	client := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, nil)
	registry := dashboard.NewRegistry(client, nil, nil, dashboard.Options{
		PollInterval: cfg.Dashboard.PollInterval,
		PageSize:     cfg.Dashboard.PageSize,
	})
	t.Cleanup(registry.Shutdown)

	app := handlers.NewAppHandlers(cfg, sm)
	authHandlers := handlers.NewAuthHandlers(sm, app, auth.AdminPassword{Plain: cfg.Admin.Password}, registry)
	limiter := middleware.NewRateLimiter(cfg.Admin.LoginRPS, cfg.Admin.LoginBurst)

	srv := httptest.NewServer(newRouter(cfg, sm, app, authHandlers, registry, limiter))
	t.Cleanup(srv.Close)
	return &testApp{server: srv, registry: registry, backend: backend}
}

// originTransport sets Origin the way a browser does for same-origin form posts.
type originTransport struct {
	origin string
}

func (o originTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Method != http.MethodGet && r.Header.Get("Origin") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("Origin", o.origin)
	}
	return http.DefaultTransport.RoundTrip(r)
}

func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar:       jar,
		Transport: originTransport{origin: a.server.URL},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func csrfToken(t *testing.T, body string) string {
	t.Helper()
	m := csrfField.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("no csrf_token field in page")
	}
	return html.UnescapeString(m[1])
}

func (a *testApp) login(t *testing.T, c *http.Client, password string) (*http.Response, string) {
	t.Helper()
	_, page := a.get(t, c, "/login")
	token := csrfToken(t, page)
	return a.post(t, c, "/login", url.Values{"csrf_token": {token}, "password": {password}}), token
}

func TestAdminRequiresLogin(t *testing.T) {
	a := newTestApp(t, 5)
	c := a.client(t)

	resp, _ := a.get(t, c, "/admin/dashboard")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("dashboard: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp, _ = a.get(t, c, "/admin/api/state")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("state api: %d, want 401", resp.StatusCode)
	}
	resp, _ = a.get(t, c, "/healthz")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}
}

func TestLoginWithoutCSRFTokenIsForbidden(t *testing.T) {
	a := newTestApp(t, 5)
	c := a.client(t)
	a.get(t, c, "/login")

	resp := a.post(t, c, "/login", url.Values{"password": {testPassword}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if a.registry.Len() != 0 {
		t.Fatal("dashboard created without a valid login")
	}
}

func TestWrongPasswordStartsNoDashboard(t *testing.T) {
	a := newTestApp(t, 5)
	c := a.client(t)

	resp, _ := a.login(t, c, "nope")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if a.registry.Len() != 0 {
		t.Fatalf("registry has %d dashboards", a.registry.Len())
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newTestApp(t, 2)
	c := a.client(t)
	_, page := a.get(t, c, "/login")
	token := csrfToken(t, page)

	var last int
	for i := 0; i < 3; i++ {
		last = a.post(t, c, "/login", url.Values{"csrf_token": {token}, "password": {"nope"}}).StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third attempt = %d, want 429", last)
	}
}

func TestApproveOrderFlow(t *testing.T) {
	a := newTestApp(t, 5)
	c := a.client(t)

	resp, token := a.login(t, c, testPassword)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/dashboard" {
		t.Fatalf("login: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if a.registry.Len() != 1 {
		t.Fatalf("registry has %d dashboards, want 1", a.registry.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, body := a.get(t, c, "/admin/api/state")
		var payload struct {
			State struct {
				Orders []struct {
					OrderID string `json:"orderid"`
				} `json:"orders"`
			} `json:"state"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			t.Fatalf("state json: %v", err)
		}
		if len(payload.State.Orders) == 3 && payload.State.Orders[1].OrderID == "o1" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("orders never loaded: %s", body)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, page := a.get(t, c, "/admin/orders")
	if resp.StatusCode != http.StatusOK || !strings.Contains(page, a.backend.customer) {
		t.Fatalf("orders page: %d, customer %q missing", resp.StatusCode, a.backend.customer)
	}
	if n := strings.Count(page, `<tr id="order-`); n != 3 {
		t.Fatalf("orders page shows %d rows, want 3", n)
	}
	last := -1
	for _, id := range []string{"o3", "o1", "o2"} {
		at := strings.Index(page, fmt.Sprintf(`id="order-%s"`, id))
		if at <= last {
			t.Fatalf("order %s rendered out of the returned order", id)
		}
		last = at
	}
	token = csrfToken(t, page)

	resp = a.post(t, c, "/admin/orders/o1/approve", url.Values{"csrf_token": {token}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/orders" {
		t.Fatalf("approve: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	want := []string{
		"PUT /users/admin/order/o1/accept",
		"POST /users/kitchenorder",
		"DELETE /users/deleteownerorder/o1",
	}
	got := a.backend.mutations()
	if len(got) != len(want) {
		t.Fatalf("mutations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mutation %d = %q, want %q", i, got[i], want[i])
		}
	}

	resp = a.post(t, c, "/logout", url.Values{"csrf_token": {token}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	if a.registry.Len() != 0 {
		t.Fatal("logout left the dashboard running")
	}
}

func TestSecondLoginReplacesDashboard(t *testing.T) {
	a := newTestApp(t, 5)
	c := a.client(t)

	resp, token := a.login(t, c, testPassword)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("first login: %d", resp.StatusCode)
	}
	// GET /login now redirects, so the form is posted again with the same token
	resp = a.post(t, c, "/login", url.Values{"csrf_token": {token}, "password": {testPassword}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("second login: %d", resp.StatusCode)
	}
	if n := a.registry.Len(); n != 1 {
		t.Fatalf("registry has %d dashboards after two logins, want 1", n)
	}
}
