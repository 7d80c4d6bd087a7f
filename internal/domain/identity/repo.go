package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists user records. Lookups return (nil, nil) when no
// record matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
