// Package memstore keeps the product catalog and user accounts in process
// memory. It is the default backend and the one used by tests.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("memstore")

// ProductStore is a thread-safe in-memory implementation of port.ProductStore.
type ProductStore struct {
	mu       sync.RWMutex
	products []domain.LoanProduct
	byID     map[string]int
}

// NewProductStore creates an empty product store.
func NewProductStore() *ProductStore {
	return &ProductStore{byID: make(map[string]int)}
}

// ListProducts filters a snapshot of the catalog with the catalog engine.
func (s *ProductStore) ListProducts(ctx context.Context, c catalog.Criteria) ([]domain.LoanProduct, error) {
	_, span := tracer.Start(ctx, "MemStore.ListProducts")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Insertion order first, so the stable sort has a deterministic base.
	result := catalog.Filter(s.products, c)
	span.SetAttributes(attribute.Int("products.count", len(result)))
	return result, nil
}

// GetProduct returns a copy of the product with the given id.
func (s *ProductStore) GetProduct(ctx context.Context, id string) (*domain.LoanProduct, error) {
	_, span := tracer.Start(ctx, "MemStore.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	p := s.products[i]
	return &p, nil
}

// ReplaceAll drops the catalog and stores products with fresh ids and timestamps.
func (s *ProductStore) ReplaceAll(ctx context.Context, products []domain.LoanProduct) (int, error) {
	_, span := tracer.Start(ctx, "MemStore.ReplaceAll")
	defer span.End()

	now := time.Now().UTC()
	next := make([]domain.LoanProduct, len(products))
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.ProcessingFee == "" {
			p.ProcessingFee = "Varies"
		}
		p.CreatedAt, p.UpdatedAt = now, now
		next[i] = p
		byID[p.ID] = i
	}

	s.mu.Lock()
	s.products = next
	s.byID = byID
	s.mu.Unlock()

	return len(next), nil
}

// Ping always succeeds.
func (s *ProductStore) Ping(context.Context) error { return nil }

// UserStore is a thread-safe in-memory implementation of port.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	_, span := tracer.Start(ctx, "MemStore.GetUserByEmail")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := *s.byID[id]
	return &u, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	_, span := tracer.Start(ctx, "MemStore.GetUserByID")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	_, span := tracer.Start(ctx, "MemStore.CreateUser")
	defer span.End()

	email := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, &domain.ErrConflict{Message: "User already exists"}
	}

	u := *user
	u.ID = uuid.New().String()
	u.Email = email
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.byID[u.ID] = &u
	s.byEmail[email] = u.ID

	out := u
	return &out, nil
}

// Ping always succeeds.
func (s *UserStore) Ping(context.Context) error { return nil }
