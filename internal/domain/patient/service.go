package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new patient profile owned by the acting nutritionist.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req CreateRequest) (*Patient, error) {
	if actor.Role != auth.RoleNutritionist {
		return nil, apperrors.Forbidden("Only nutritionists can create patients")
	}

	now := time.Now().UTC()
	p := &Patient{
		ID:        uuid.New(),
		OwnerID:   actor.ID,
		Name:      req.Name,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Sex:       req.Sex,
		HeightCm:  req.HeightCm,
		WeightKg:  req.WeightKg,
		Phone:     req.Phone,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// List returns the acting nutritionist's own roster.
func (s *Service) List(ctx context.Context, actor *auth.Actor, limit, offset int) ([]*Patient, error) {
	if actor.Role != auth.RoleNutritionist {
		return nil, apperrors.Forbidden("Only nutritionists can list patients")
	}
	patients, err := s.repo.ListByOwner(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

// Get loads a single patient. Absence reports NotFound before any access
// decision is made.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("Patient not found")
	}
	if !auth.CanReadPatient(actor, p.OwnerID, p.ID) {
		return nil, apperrors.Forbidden("Not allowed to view this patient")
	}
	return p, nil
}

// Update applies a partial update. Only the owning nutritionist may write;
// a linked patient account can read but never modify its own profile.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, patch Patch) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("Patient not found")
	}
	if !auth.CanWritePatient(actor, p.OwnerID) {
		return nil, apperrors.Forbidden("Not allowed to modify this patient")
	}

	patch.Apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}
