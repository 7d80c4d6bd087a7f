package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patient profiles. GetByID returns (nil, nil) when no
// record matches.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
}
