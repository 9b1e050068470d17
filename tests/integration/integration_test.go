package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/handler"
	"github.com/boddenberg/loanhub/internal/infra/cache"
	"github.com/boddenberg/loanhub/internal/infra/memstore"
	"github.com/boddenberg/loanhub/internal/infra/mongostore"
	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/infra/resilience"
	"github.com/boddenberg/loanhub/internal/port"
	"github.com/boddenberg/loanhub/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T, products port.ProductStore, users port.UserStore, storeName string) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	revoked := cache.New[string](time.Minute)
	t.Cleanup(revoked.Close)

	router := handler.NewRouter(handler.Services{
		EMI:      service.NewEMIService(metrics, logger),
		Products: service.NewProductService(products, storeName, metrics, logger),
		Auth:     service.NewAuthService(users, revoked, "integration-secret", time.Hour, bcrypt.MinCost, metrics, logger),
		Blog:     service.NewBlogService(service.DefaultPosts()),
		Health: service.NewHealthService(map[string]port.Pinger{
			"products": products,
			"users":    users,
		}, time.Second, logger),
	}, handler.Options{AllowSeed: true}, metrics, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body any, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expect[T any](t *testing.T, resp *http.Response, status int) T {
	t.Helper()
	var v T
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, status, resp.StatusCode)
	}
	if status == http.StatusNoContent {
		return v
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// runJourney walks a visitor through seeding, browsing, calculating and
// signing in against a live server.
func runJourney(t *testing.T, base string) {
	seed := expect[domain.SeedResponse](t, call(t, http.MethodPost, base+"/api/seed", nil, ""), http.StatusOK)
	if seed.Count != 6 {
		t.Fatalf("expected 6 seeded products, got %d", seed.Count)
	}

	homes := expect[[]domain.LoanProduct](t, call(t, http.MethodGet, base+"/api/products?type=home-loan", nil, ""), http.StatusOK)
	if len(homes) != 1 {
		t.Fatalf("expected exactly one home loan, got %d", len(homes))
	}

	product := expect[domain.LoanProduct](t, call(t, http.MethodGet, base+"/api/products/"+homes[0].ID, nil, ""), http.StatusOK)
	if product.Name != "Home Loan Prime" {
		t.Errorf("expected Home Loan Prime, got %s", product.Name)
	}

	hdfc := expect[[]domain.LoanProduct](t, call(t, http.MethodGet, base+"/api/products?company=HDFC&sortBy=interestRate", nil, ""), http.StatusOK)
	if len(hdfc) != 2 || hdfc[0].InterestRate > hdfc[1].InterestRate {
		t.Errorf("expected two HDFC products by rate asc, got %+v", hdfc)
	}

	result := expect[domain.EMIResult](t, call(t, http.MethodPost, base+"/api/emi",
		map[string]any{"principal": product.MinAmount, "rate": product.InterestRate, "tenure": product.Tenure.Min}, ""), http.StatusOK)
	if result.MonthlyInstallment <= 0 || result.TotalInterest < 0 {
		t.Errorf("unexpected EMI result: %+v", result)
	}

	auth := expect[domain.AuthResponse](t, call(t, http.MethodPost, base+"/api/auth/register",
		domain.RegisterRequest{Name: "Integration User", Email: "it@example.com", Password: "integration-pass"}, ""), http.StatusCreated)

	me := expect[domain.User](t, call(t, http.MethodGet, base+"/api/auth/me", nil, auth.Token), http.StatusOK)
	if me.Email != "it@example.com" {
		t.Errorf("expected it@example.com, got %s", me.Email)
	}

	expect[struct{}](t, call(t, http.MethodPost, base+"/api/auth/logout", nil, auth.Token), http.StatusNoContent)
	expect[domain.ErrorResponse](t, call(t, http.MethodGet, base+"/api/auth/me", nil, auth.Token), http.StatusUnauthorized)

	stats := expect[domain.UsageStats](t, call(t, http.MethodGet, base+"/api/stats", nil, ""), http.StatusOK)
	if stats.EMICalculations != 1 || stats.Registrations != 1 || stats.ProductQueries != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

// TestIntegration_MemoryStore runs the full flow on the in-memory store.
func TestIntegration_MemoryStore(t *testing.T) {
	srv := newServer(t, memstore.NewProductStore(), memstore.NewUserStore(), "memory")
	runJourney(t, srv.URL)
}

// TestIntegration_MongoStore runs the same flow against a real MongoDB.
// Set LOANHUB_TEST_MONGO_URI to enable it.
func TestIntegration_MongoStore(t *testing.T) {
	uri := os.Getenv("LOANHUB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LOANHUB_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := mongostore.Connect(ctx, mongostore.Options{
		URI:        uri,
		Database:   "loanhub_it_" + time.Now().Format("20060102150405"),
		Timeout:    5 * time.Second,
		Resilience: resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	srv := newServer(t, store, store, "mongo")
	runJourney(t, srv.URL)

	// Invalid object ids are a plain 404, same as unknown ids.
	expect[domain.ErrorResponse](t, call(t, http.MethodGet, srv.URL+"/api/products/not-an-object-id", nil, ""), http.StatusNotFound)

	// Both stores agree on ordering for the same criteria.
	mem := memstore.NewProductStore()
	if _, err := mem.ReplaceAll(ctx, domain.SampleProducts()); err != nil {
		t.Fatal(err)
	}
	for _, key := range []catalog.SortKey{catalog.SortDefault, catalog.SortByRating, catalog.SortByInterestRate, catalog.SortByMaxAmount} {
		c := catalog.Criteria{Search: "loan", Sort: key}
		a, err := mem.ListProducts(ctx, c)
		if err != nil {
			t.Fatal(err)
		}
		b, err := store.ListProducts(ctx, c)
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != len(b) {
			t.Fatalf("sort %q: %d vs %d products", key, len(a), len(b))
		}
		for i := range a {
			if a[i].Name != b[i].Name {
				t.Errorf("sort %q position %d: memory %s, mongo %s", key, i, a[i].Name, b[i].Name)
			}
		}
	}
}

// TestIntegration_MongoUnreachable checks that an unreachable database
// surfaces as an external service error instead of hanging.
func TestIntegration_MongoUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := mongostore.Connect(ctx, mongostore.Options{
		URI:        "mongodb://127.0.0.1:1",
		Database:   "loanhub",
		Timeout:    200 * time.Millisecond,
		Resilience: resilience.Config{MaxRetries: 0, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 1},
	}, zap.NewNop())

	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
