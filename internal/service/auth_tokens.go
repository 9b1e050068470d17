package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenIssuer = "loanhub"

// ============================================================
// Logout — POST /api/auth/logout
// ============================================================

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *JWTClaims) error {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if claims.ID == "" {
		return &domain.ErrUnauthorized{Message: "Token cannot be revoked"}
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		s.revoked.Set(claims.ID, claims.UserID, ttl)
	}

	s.metrics.IncrAuthEvent("logout")
	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

// ============================================================
// ValidateToken — used by middleware
// ============================================================

// JWTClaims represents the claims in session tokens. UserID is also the
// subject; RegisteredClaims.ID (jti) identifies the token for revocation.
type JWTClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, &domain.ErrUnauthorized{Message: "Invalid token"}
	}

	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, &domain.ErrUnauthorized{Message: "Token has been revoked"}
	}

	return claims, nil
}

// ============================================================
// Internal JWT helpers
// ============================================================

func (s *AuthService) signToken(userID string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
