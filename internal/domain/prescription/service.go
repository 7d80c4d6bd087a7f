package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type Service struct {
	repo     Repository
	patients PatientDirectory
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) patientRef(ctx context.Context, patientID uuid.UUID) (*PatientRef, error) {
	ref, err := s.patients.PatientRef(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if ref == nil {
		return nil, apperrors.NotFound("Patient not found")
	}
	return ref, nil
}

// Create authors a new prescription. The target patient must exist and be
// owned by the acting nutritionist. Creating directly as published stamps
// PublishedAt at creation time.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req CreateRequest) (*Prescription, error) {
	ref, err := s.patientRef(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !auth.CanWritePatient(actor, ref.OwnerID) {
		return nil, apperrors.Forbidden("Not allowed to prescribe for this patient")
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	now := time.Now().UTC()
	p := &Prescription{
		ID:             uuid.New(),
		PatientID:      req.PatientID,
		NutritionistID: actor.ID,
		Title:          req.Title,
		Status:         status,
		Meals:          normalizeMeals(req.Meals),
		GeneralNotes:   req.GeneralNotes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == StatusPublished {
		p.PublishedAt = &now
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// Get loads a single prescription, gated by read access to its patient.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("Prescription not found")
	}
	ref, err := s.patientRef(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadPrescription(actor, ref.OwnerID, ref.ID) {
		return nil, apperrors.Forbidden("Not allowed to view this prescription")
	}
	return p, nil
}

// Update applies a partial update by the authoring nutritionist. A
// transition to published stamps PublishedAt only the first time; once set
// it survives any later status change.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, patch Patch) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("Prescription not found")
	}
	if !auth.CanWritePrescription(actor, p.NutritionistID) {
		return nil, apperrors.Forbidden("Not allowed to modify this prescription")
	}

	patch.Apply(p)
	if p.Status == StatusPublished && p.PublishedAt == nil {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// Publish is the explicit transition entry point. Unlike an update that
// sets status to published, it always restamps PublishedAt.
func (s *Service) Publish(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("Prescription not found")
	}
	if !auth.CanWritePrescription(actor, p.NutritionistID) {
		return nil, apperrors.Forbidden("Not allowed to publish this prescription")
	}

	now := time.Now().UTC()
	p.Status = StatusPublished
	p.PublishedAt = &now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// Duplicate creates a fresh draft copy of an existing prescription: new
// identifiers throughout, never published, addressed to the same patient.
func (s *Service) Duplicate(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Prescription, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if src == nil {
		return nil, apperrors.NotFound("Prescription not found")
	}
	if !auth.CanWritePrescription(actor, src.NutritionistID) {
		return nil, apperrors.Forbidden("Not allowed to duplicate this prescription")
	}

	now := time.Now().UTC()
	cp := &Prescription{
		ID:             uuid.New(),
		PatientID:      src.PatientID,
		NutritionistID: actor.ID,
		Title:          src.Title + " (copy)",
		Status:         StatusDraft,
		Meals:          freshMeals(src.Meals),
		GeneralNotes:   src.GeneralNotes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, cp); err != nil {
		return nil, apperrors.Internal(err)
	}
	return cp, nil
}

// ListForPatient returns a patient's prescriptions, newest first.
func (s *Service) ListForPatient(ctx context.Context, actor *auth.Actor, patientID uuid.UUID, limit, offset int) ([]*Prescription, error) {
	ref, err := s.patientRef(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadPrescription(actor, ref.OwnerID, ref.ID) {
		return nil, apperrors.Forbidden("Not allowed to view this patient's prescriptions")
	}

	out, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

// LatestPublished returns the patient's most recently published plan, or
// (nil, nil) when none exists. Absence is an empty result, not an error.
func (s *Service) LatestPublished(ctx context.Context, actor *auth.Actor, patientID uuid.UUID) (*Prescription, error) {
	ref, err := s.patientRef(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadPrescription(actor, ref.OwnerID, ref.ID) {
		return nil, apperrors.Forbidden("Not allowed to view this patient's prescriptions")
	}

	p, err := s.repo.LatestPublished(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}
