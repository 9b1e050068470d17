package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/handler"
	"github.com/boddenberg/loanhub/internal/infra/cache"
	"github.com/boddenberg/loanhub/internal/infra/memstore"
	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/port"
	"github.com/boddenberg/loanhub/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T, opts handler.Options) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	products := memstore.NewProductStore()
	users := memstore.NewUserStore()
	revoked := cache.New[string](time.Minute)
	t.Cleanup(revoked.Close)

	productSvc := service.NewProductService(products, "memory", metrics, logger)
	if _, err := productSvc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return handler.NewRouter(handler.Services{
		EMI:      service.NewEMIService(metrics, logger),
		Products: productSvc,
		Auth:     service.NewAuthService(users, revoked, "test-secret", time.Hour, bcrypt.MinCost, metrics, logger),
		Blog:     service.NewBlogService(service.DefaultPosts()),
		Health: service.NewHealthService(map[string]port.Pinger{
			"products": products,
			"users":    users,
		}, time.Second, logger),
	}, opts, metrics, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// --- Operational ---

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, handler.Options{AllowSeed: true})

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping", "/api/stats"} {
		rec := do(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	h := decode[domain.HealthStatus](t, do(t, router, http.MethodGet, "/healthz", ""))
	if h.Status != service.StatusHealthy || len(h.Services) != 2 {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestHealthz_NoServices(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, handler.Options{}, observability.NewMetrics(), zap.NewNop())

	if rec := do(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/api/emi", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without EMI service, got %d", rec.Code)
	}
}

// --- EMI ---

func TestEMI_Success(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	tests := []struct {
		name string
		body string
	}{
		{"numbers", `{"principal":500000,"rate":10.5,"tenure":24}`},
		{"numeric strings", `{"principal":"500000","rate":"10.5","tenure":"24"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/emi", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			got := decode[domain.EMIResult](t, rec)
			if got.MonthlyInstallment != 23188 || got.TotalPayable != 556512 || got.TotalInterest != 56512 {
				t.Errorf("unexpected result: %+v", got)
			}
			if got.TenureMonths != 24 || got.AnnualRatePercent != 10.5 || got.Principal != 500000 {
				t.Errorf("inputs not echoed: %+v", got)
			}
		})
	}
}

func TestEMI_BadRequests(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed json", `{"principal":`},
		{"missing tenure", `{"principal":500000,"rate":10.5}`},
		{"blank string", `{"principal":"","rate":10.5,"tenure":24}`},
		{"non numeric", `{"principal":"abc","rate":10.5,"tenure":24}`},
		{"zero rate", `{"principal":500000,"rate":0,"tenure":24}`},
		{"negative principal", `{"principal":-1,"rate":10.5,"tenure":24}`},
		{"fractional tenure", `{"principal":500000,"rate":10.5,"tenure":12.5}`},
		{"boolean", `{"principal":true,"rate":10.5,"tenure":24}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/emi", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if e := decode[domain.ErrorResponse](t, rec); e.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestEMISchedule(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	rec := do(t, router, http.MethodPost, "/api/emi/schedule", `{"principal":100000,"rate":0,"tenure":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[domain.ScheduleResponse](t, rec)
	if got.Summary.MonthlyInstallment != 10000 || len(got.Schedule) != 10 {
		t.Errorf("unexpected schedule: %+v", got.Summary)
	}
	if got.Schedule[9].RemainingPrincipal != 0 {
		t.Errorf("expected closed balance, got %v", got.Schedule[9].RemainingPrincipal)
	}
}

func TestEMI_ExtremeInputsDoNotFail(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	rec := do(t, router, http.MethodPost, "/api/emi", `{"principal":100000,"rate":1000,"tenure":1200}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[domain.EMIResult](t, rec); got.MonthlyInstallment != 83333 {
		t.Errorf("expected emi 83333, got %v", got.MonthlyInstallment)
	}

	// The same loan cannot be amortized with the rounded installment.
	rec = do(t, router, http.MethodPost, "/api/emi/schedule", `{"principal":100000,"rate":1000,"tenure":1200}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// --- Products ---

func TestListProducts(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst string
	}{
		{"all, default order", "", 6, "Home Loan Prime"},
		{"by type", "?type=home-loan", 1, "Home Loan Prime"},
		{"company case-insensitive", "?company=hdfc", 2, "Premium Balance Transfer"},
		{"min amount floor", "?minAmount=100000", 3, "Home Loan Prime"},
		{"max amount ceiling", "?maxAmount=1000000", 2, "Premium Balance Transfer"},
		{"search name or company", "?search=loan", 5, "Home Loan Prime"},
		{"sort by interest rate", "?sortBy=interestRate", 6, "Premium Balance Transfer"},
		{"sort by max amount", "?sortBy=maxAmount", 6, "Home Loan Prime"},
		{"no match", "?company=nobank", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/products"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			got := decode[[]domain.LoanProduct](t, rec)
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d products, got %d", tt.wantCount, len(got))
			}
			if tt.wantCount > 0 && got[0].Name != tt.wantFirst {
				t.Errorf("expected first %q, got %q", tt.wantFirst, got[0].Name)
			}
		})
	}
}

func TestListProducts_BadParams(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	for _, q := range []string{"?minAmount=lots", "?maxAmount=NaN", "?sortBy=name", "?type=mortgage"} {
		if rec := do(t, router, http.MethodGet, "/api/products"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	list := decode[[]domain.LoanProduct](t, do(t, router, http.MethodGet, "/api/products?type=car-loan", ""))
	if len(list) != 1 {
		t.Fatalf("expected one car loan, got %d", len(list))
	}

	rec := do(t, router, http.MethodGet, "/api/products/"+list[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[domain.LoanProduct](t, rec); got.Company != "ICICI Bank" {
		t.Errorf("expected ICICI Bank, got %s", got.Company)
	}

	if rec := do(t, router, http.MethodGet, "/api/products/does-not-exist", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSeed(t *testing.T) {
	router := newTestRouter(t, handler.Options{AllowSeed: true})

	rec := do(t, router, http.MethodPost, "/api/seed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[domain.SeedResponse](t, rec); got.Count != 6 {
		t.Errorf("expected count 6, got %d", got.Count)
	}

	disabled := newTestRouter(t, handler.Options{AllowSeed: false})
	if rec := do(t, disabled, http.MethodPost, "/api/seed", ""); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 when seeding disabled, got %d", rec.Code)
	}
}

// --- Blog ---

func TestBlog(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	posts := decode[[]domain.BlogPost](t, do(t, router, http.MethodGet, "/api/blog?category=Credit+Score", ""))
	if len(posts) != 1 || posts[0].ID != 3 {
		t.Errorf("expected post 3, got %+v", posts)
	}

	all := decode[[]domain.BlogPost](t, do(t, router, http.MethodGet, "/api/blog?category=All", ""))
	if len(all) != 6 {
		t.Errorf("expected 6 posts, got %d", len(all))
	}

	cats := decode[[]string](t, do(t, router, http.MethodGet, "/api/blog/categories", ""))
	if len(cats) != 7 || cats[0] != "All" {
		t.Errorf("unexpected categories: %v", cats)
	}
}

// --- Auth ---

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	reg := do(t, router, http.MethodPost, "/api/auth/register", `{"name":"Asha","email":"asha@example.com","password":"s3cret-pass"}`)
	if reg.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", reg.Code, reg.Body.String())
	}
	if got := decode[domain.AuthResponse](t, reg); got.Token == "" || got.User.Email != "asha@example.com" {
		t.Errorf("unexpected register response: %+v", got)
	}

	dup := do(t, router, http.MethodPost, "/api/auth/register", `{"name":"Asha","email":"ASHA@example.com","password":"s3cret-pass"}`)
	if dup.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", dup.Code)
	}

	bad := do(t, router, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"nope-nope"}`)
	if bad.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", bad.Code)
	}

	login := do(t, router, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"s3cret-pass"}`)
	if login.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", login.Code)
	}
	token := decode[domain.AuthResponse](t, login).Token

	me := do(t, router, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer "+token)
	if me.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", me.Code)
	}
	if strings.Contains(me.Body.String(), "password") {
		t.Error("me must not expose the password hash")
	}

	if rec := do(t, router, http.MethodPost, "/api/auth/logout", "", "Authorization", "Bearer "+token); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMissingOrMalformed(t *testing.T) {
	router := newTestRouter(t, handler.Options{})

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer not-a-jwt"} {
		var rec *httptest.ResponseRecorder
		if header == "" {
			rec = do(t, router, http.MethodGet, "/api/auth/me", "")
		} else {
			rec = do(t, router, http.MethodGet, "/api/auth/me", "", "Authorization", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, handler.Options{CORSAllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/emi", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}
