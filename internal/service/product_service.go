package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var productTracer = otel.Tracer("service/products")

// ProductService serves the loan product catalog.
type ProductService struct {
	store     port.ProductStore
	storeName string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewProductService creates the product service. storeName labels metrics
// and logs ("memory" or "mongo").
func NewProductService(store port.ProductStore, storeName string, metrics *observability.Metrics, logger *zap.Logger) *ProductService {
	return &ProductService{
		store:     store,
		storeName: storeName,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns the products matching c in c.Sort order.
func (s *ProductService) List(ctx context.Context, c catalog.Criteria) ([]domain.LoanProduct, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("criteria.type", string(c.Type)),
		attribute.String("criteria.sort", string(c.Sort)),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("products.list", time.Since(start)) }()

	s.metrics.IncrProductQuery(s.storeName)
	products, err := s.store.ListProducts(ctx, c)
	if err != nil {
		s.storeFailed("list products", err)
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.LoanProduct{}
	}
	return products, nil
}

// Get returns one product or *domain.ErrNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.LoanProduct, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		s.storeFailed("get product", err)
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Seed replaces the catalog with the sample products.
func (s *ProductService) Seed(ctx context.Context) (*domain.SeedResponse, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Seed")
	defer span.End()

	n, err := s.store.ReplaceAll(ctx, domain.SampleProducts())
	if err != nil {
		s.storeFailed("seed products", err)
		return nil, fmt.Errorf("seed products: %w", err)
	}

	s.logger.Info("catalog seeded", zap.String("store", s.storeName), zap.Int("count", n))
	return &domain.SeedResponse{Message: "Database seeded successfully", Count: n}, nil
}

// storeFailed counts and logs infrastructure failures. Not-found and
// validation errors are expected outcomes and are not counted.
func (s *ProductService) storeFailed(op string, err error) {
	if isExpected(err) {
		return
	}
	s.metrics.IncrStoreError(s.storeName)
	s.logger.Error("product store failed",
		zap.String("op", op),
		zap.String("store", s.storeName),
		zap.Error(err),
	)
}
