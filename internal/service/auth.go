// Package service — AuthService handles registration, login and JWT
// session management for catalog users.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/infra/observability"
	"github.com/boddenberg/loanhub/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes; longer passwords are rejected.
	maxPasswordLength = 72
)

// AuthService orchestrates authentication flows.
type AuthService struct {
	users      port.UserStore
	revoked    port.Cache[string]
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuthService creates a new auth service. revoked holds the ids of
// logged-out tokens until they expire.
func NewAuthService(
	users port.UserStore,
	revoked port.Cache[string],
	jwtSecret string,
	tokenTTL time.Duration,
	bcryptCost int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		revoked:    revoked,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// Register — POST /api/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &domain.ErrInvalidInput{Field: "name", Message: "is required"}
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "User already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// CreateUser still enforces uniqueness for concurrent registrations.
	user, err := s.users.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncrAuthEvent("register")
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.issue(user)
}

// ============================================================
// Login — POST /api/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if strings.TrimSpace(req.Email) == "" {
		return nil, &domain.ErrInvalidInput{Field: "email", Message: "is required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrInvalidInput{Field: "password", Message: "is required"}
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		s.metrics.IncrAuthEvent("login_failed")
		return nil, &domain.ErrUnauthorized{Message: "Invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.IncrAuthEvent("login_failed")
		s.logger.Warn("login: wrong password", zap.String("user_id", user.ID))
		return nil, &domain.ErrUnauthorized{Message: "Invalid credentials"}
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.metrics.IncrAuthEvent("login")
	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return s.issue(user)
}

// ============================================================
// Me — GET /api/auth/me
// ============================================================

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResponse{
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		User:      user.Public(),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", &domain.ErrInvalidInput{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &domain.ErrInvalidInput{Field: "email", Message: "is not a valid address"}
	}
	return email, nil
}

func validatePassword(p string) error {
	switch {
	case len(p) < minPasswordLength:
		return &domain.ErrInvalidInput{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	case len(p) > maxPasswordLength:
		return &domain.ErrInvalidInput{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordLength)}
	}
	return nil
}
