package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type Service struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewService(repo UserRepository, tokens *auth.TokenService) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// NormalizeEmail lowercases and trims an email address. Every email that
// reaches storage goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate verifies credentials and issues a session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.InvalidState("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// ActorByID implements auth.ActorSource for the bearer middleware.
func (s *Service) ActorByID(ctx context.Context, id uuid.UUID) (*auth.Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, nil
	}
	return user.Actor(), nil
}

// CreateNutritionist registers a nutritionist account. Used by the seed CLI
// command; there is no self-service signup surface.
func (s *Service) CreateNutritionist(ctx context.Context, name, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Name, email and password are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil {
		return nil, apperrors.InvalidState("User with this email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Role:         auth.RoleNutritionist,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
