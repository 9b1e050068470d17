package handler

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Products — GET /api/products
// ============================================================

func listProductsHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products")
		defer span.End()

		criteria, err := parseCriteria(r.URL.Query())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		products, err := svc.List(ctx, criteria)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("products.count", len(products)))
		writeJSON(w, http.StatusOK, products)
	}
}

// parseCriteria reads type, company, minAmount, maxAmount, search and sortBy.
// Absent or blank parameters impose nothing.
func parseCriteria(q url.Values) (catalog.Criteria, error) {
	var c catalog.Criteria

	if t := strings.TrimSpace(q.Get("type")); t != "" {
		pt := domain.ProductType(t)
		if !pt.Valid() {
			return c, &domain.ErrInvalidInput{Field: "type", Message: fmt.Sprintf("unknown product type %q", t)}
		}
		c.Type = pt
	}
	c.Company = strings.TrimSpace(q.Get("company"))
	c.Search = strings.TrimSpace(q.Get("search"))

	var err error
	if c.MinAmountFloor, err = parseAmount(q, "minAmount"); err != nil {
		return c, err
	}
	if c.MaxAmountCeiling, err = parseAmount(q, "maxAmount"); err != nil {
		return c, err
	}
	if c.Sort, err = catalog.ParseSortKey(strings.TrimSpace(q.Get("sortBy"))); err != nil {
		return c, err
	}
	return c, nil
}

func parseAmount(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &domain.ErrInvalidInput{Field: key, Message: fmt.Sprintf("%q is not a number", raw)}
	}
	return &v, nil
}

// ============================================================
// Products — GET /api/products/{id}
// ============================================================

func getProductHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("product.id", id))

		product, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

// ============================================================
// Seed — POST /api/seed
// ============================================================

func seedHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/seed")
		defer span.End()

		resp, err := svc.Seed(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
