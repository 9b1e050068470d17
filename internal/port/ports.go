// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the engines and
// services from concrete storage implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProductStore reads and seeds the loan product catalog.
type ProductStore interface {
	// ListProducts returns the products matching c, ordered by c.Sort.
	ListProducts(ctx context.Context, c catalog.Criteria) ([]domain.LoanProduct, error)
	// GetProduct returns *domain.ErrNotFound when id is unknown.
	GetProduct(ctx context.Context, id string) (*domain.LoanProduct, error)
	// ReplaceAll drops the catalog and inserts products.
	ReplaceAll(ctx context.Context, products []domain.LoanProduct) (int, error)
	Ping(ctx context.Context) error
}

// UserStore persists registered accounts.
type UserStore interface {
	// GetUserByEmail returns (nil, nil) when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	// CreateUser returns *domain.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL. A ttl <= 0 uses the cache default.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T, ttl time.Duration)
	Delete(key string)
}
