package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ============================================================
// UserStore implementation
// ============================================================

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.GetUserByEmail")
	defer span.End()

	var (
		doc   userDoc
		found bool
	)
	err := s.run(ctx, "users.findByEmail", func(ctx context.Context) error {
		err := s.users.FindOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil // not found is not an error for auth lookup
		}
		found = err == nil
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.GetUserByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}

	var doc userDoc
	err = s.run(ctx, "users.findByID", func(ctx context.Context) error {
		err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.ErrNotFound{Resource: "user", ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.CreateUser")
	defer span.End()

	doc := userDoc{
		Name:      user.Name,
		Email:     strings.ToLower(user.Email),
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	err := s.run(ctx, "users.insert", func(ctx context.Context) error {
		res, err := s.users.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ErrConflict{Message: "User already exists"}
		}
		if err != nil {
			return err
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			doc.ID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
