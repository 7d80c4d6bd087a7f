package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nutrio/nutrio/pkg/apperrors"
)

// Claims is the session token payload: subject is the user id, Role the
// role at issue time.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed session tokens. It is
// stateless beyond the signing key, which is process-wide configuration;
// construction fails rather than falling back to a generated key.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewTokenService(secret string, defaultTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token service requires a signing key")
	}
	if defaultTTL <= 0 {
		defaultTTL = 7 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), defaultTTL: defaultTTL}, nil
}

// Issue produces a signed token for the user with an absolute expiry of
// now+ttl. A non-positive ttl uses the service default.
func (s *TokenService) Issue(userID uuid.UUID, role Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning the embedded identity.
// Any failure — bad signature, expiry, malformed or missing subject — is
// reported as unauthenticated.
func (s *TokenService) Verify(tokenStr string) (uuid.UUID, Role, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", apperrors.Wrap(err, apperrors.CodeUnauthenticated, "Invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, "", apperrors.Unauthenticated("Invalid token")
	}
	if claims.Subject == "" {
		return uuid.Nil, "", apperrors.Unauthenticated("Invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", apperrors.Unauthenticated("Invalid token")
	}
	return userID, claims.Role, nil
}
