// Package mongostore persists the product catalog and user accounts in
// MongoDB. Every call goes through a bulkhead, a circuit breaker and
// retries, the same way the HTTP backends of this service are guarded.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("mongostore")

const (
	productsCollection = "products"
	usersCollection    = "users"
)

// Options configures a Store.
type Options struct {
	URI        string
	Database   string
	Timeout    time.Duration
	Resilience resilience.Config
}

// Store implements port.ProductStore and port.UserStore on MongoDB.
type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	users    *mongo.Collection
	cb       *gobreaker.CircuitBreaker
	cfg      resilience.Config
	bulkhead *resilience.Bulkhead
	timeout  time.Duration
	logger   *zap.Logger
}

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		client:   client,
		products: db.Collection(productsCollection),
		users:    db.Collection(usersCollection),
		cb:       resilience.NewCircuitBreaker("mongo", logger),
		cfg:      opts.Resilience,
		bulkhead: resilience.NewBulkhead(opts.Resilience.MaxConcurrency),
		timeout:  opts.Timeout,
		logger:   logger,
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongo store connected", zap.String("database", opts.Database))
	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "MongoStore.Ping")
	defer span.End()

	return s.run(ctx, "ping", func(ctx context.Context) error {
		return s.client.Ping(ctx, readpref.Primary())
	})
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	return s.run(ctx, "indexes", func(ctx context.Context) error {
		if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}); err != nil {
			return fmt.Errorf("users email index: %w", err)
		}
		if _, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "type", Value: 1}},
		}); err != nil {
			return fmt.Errorf("products indexes: %w", err)
		}
		return nil
	})
}

// run executes fn with a per-call timeout inside the bulkhead and breaker.
// Domain errors pass through; driver failures become *domain.ErrExternalService.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := s.bulkhead.Acquire(ctx); err != nil {
		return &domain.ErrExternalService{Service: "mongo/" + op, Err: err}
	}
	defer s.bulkhead.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := resilience.Execute(ctx, s.cb, s.cfg, func() error { return fn(ctx) })
	if err == nil || isDomainError(err) {
		return err
	}

	s.logger.Error("mongo: operation failed",
		zap.String("op", op),
		zap.Error(err),
	)
	return &domain.ErrExternalService{Service: "mongo/" + op, Err: err}
}

func isDomainError(err error) bool {
	var (
		invalid  *domain.ErrInvalidInput
		notFound *domain.ErrNotFound
		conflict *domain.ErrConflict
		open     *domain.ErrCircuitOpen
	)
	return errors.As(err, &invalid) ||
		errors.As(err, &notFound) ||
		errors.As(err, &conflict) ||
		errors.As(err, &open)
}
