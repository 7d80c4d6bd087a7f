package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists prescriptions. Single-record lookups return (nil, nil)
// when no record matches, including LatestPublished when the patient has no
// published plan.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, error)
	LatestPublished(ctx context.Context, patientID uuid.UUID) (*Prescription, error)
}

// PatientRef is the slice of a patient record the lifecycle checks need:
// existence and ownership.
type PatientRef struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// PatientDirectory resolves patient references without importing the roster
// package. Returns (nil, nil) when the patient does not exist.
type PatientDirectory interface {
	PatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error)
}
