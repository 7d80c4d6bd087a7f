package invite

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists invites. GetByToken and GetByID return (nil, nil)
// when no record matches. Transition is the conditional status write the
// at-most-once acceptance guarantee hangs on: it must report whether the
// write actually matched a row in the expected prior state.
type Repository interface {
	Create(ctx context.Context, i *Invite) error
	GetByToken(ctx context.Context, token string) (*Invite, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Invite, error)
	List(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]*Invite, int, error)
	Transition(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}
