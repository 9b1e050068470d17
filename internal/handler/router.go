package handler

import (
	"net/http"

	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the application services the router exposes. A nil
// service leaves its routes answering 503.
type Services struct {
	EMI      *service.EMIService
	Products *service.ProductService
	Auth     *service.AuthService
	Blog     *service.BlogService
	Health   *service.HealthService
}

// Options tunes the router.
type Options struct {
	AllowSeed          bool
	CORSAllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Health))
	r.Get("/readyz", readyzHandler(svcs.Health))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		// EMI calculator
		if svcs.EMI != nil {
			r.Post("/emi", emiHandler(svcs.EMI, logger))
			r.Post("/emi/schedule", emiScheduleHandler(svcs.EMI, logger))
		} else {
			r.Handle("/emi", unavailable("emi"))
			r.Handle("/emi/*", unavailable("emi"))
		}

		// Product catalog
		if svcs.Products != nil {
			r.Get("/products", listProductsHandler(svcs.Products, logger))
			r.Get("/products/{id}", getProductHandler(svcs.Products, logger))
			if opts.AllowSeed {
				r.Post("/seed", seedHandler(svcs.Products, logger))
			} else {
				r.Post("/seed", func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusForbidden, "seeding is disabled")
				})
			}
		} else {
			r.Handle("/products", unavailable("products"))
			r.Handle("/products/*", unavailable("products"))
			r.Handle("/seed", unavailable("products"))
		}

		// Blog
		if svcs.Blog != nil {
			r.Get("/blog", blogPostsHandler(svcs.Blog))
			r.Get("/blog/categories", blogCategoriesHandler(svcs.Blog))
		}

		// Usage counters
		r.Get("/stats", statsHandler(metrics))

		// Authentication
		r.Route("/auth", func(r chi.Router) {
			if svcs.Auth == nil {
				r.Handle("/*", unavailable("auth"))
				return
			}
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Get("/me", authMeHandler(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})
	})

	return r
}

func unavailable(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusServiceUnavailable, name+" service unavailable")
	}
}

// ============================================================
// Operational endpoints
// ============================================================

// healthzHandler always answers 200; the body reports dependency status.
func healthzHandler(svc *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": service.StatusHealthy})
			return
		}
		writeJSON(w, http.StatusOK, svc.Check(r.Context()))
	}
}

// readyzHandler answers 503 until every dependency responds.
func readyzHandler(svc *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		h := svc.Check(r.Context())
		if h.Status != service.StatusHealthy {
			writeJSON(w, http.StatusServiceUnavailable, h)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func statsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
