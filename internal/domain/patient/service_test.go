package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type mockRepo struct {
	store map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Patient)}
}
func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.store[p.ID] = p
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	return m.store[id], nil
}
func (m *mockRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*Patient, error) {
	out := make([]*Patient, 0)
	for _, p := range m.store {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	m.store[p.ID] = p
	return nil
}

func nutritionistActor() *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Role: auth.RoleNutritionist, Name: "Dr. Pro"}
}

func patientActor(patientID uuid.UUID) *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Role: auth.RolePatient, Name: "Bob", PatientID: &patientID}
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := nutritionistActor()

	p, err := svc.Create(context.Background(), owner, CreateRequest{
		Name:  "Alice",
		Email: "alice@x.com",
		Notes: strPtr("gluten free"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.OwnerID != owner.ID {
		t.Errorf("owner must be the creating nutritionist, got %s", p.OwnerID)
	}
	if p.Notes == nil || *p.Notes != "gluten free" {
		t.Error("optional fields must round-trip")
	}

	other := patientActor(uuid.New())
	if _, err := svc.Create(context.Background(), other, CreateRequest{Name: "X", Email: "x@x.com"}); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("patient-role create: expected forbidden, got %v", err)
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	owner := nutritionistActor()
	other := nutritionistActor()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, owner, CreateRequest{Name: "P", Email: "p@x.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.Create(ctx, other, CreateRequest{Name: "Q", Email: "q@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mine, err := svc.List(ctx, owner, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 patients, got %d", len(mine))
	}
	for _, p := range mine {
		if p.OwnerID != owner.ID {
			t.Errorf("list leaked a foreign patient: %+v", p)
		}
	}
}

func TestGet_AccessControl(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	owner := nutritionistActor()

	p, err := svc.Create(ctx, owner, CreateRequest{Name: "Alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Get(ctx, owner, p.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := svc.Get(ctx, patientActor(p.ID), p.ID); err != nil {
		t.Errorf("linked patient read failed: %v", err)
	}
	if _, err := svc.Get(ctx, nutritionistActor(), p.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("foreign nutritionist: expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, patientActor(uuid.New()), p.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("unlinked patient: expected forbidden, got %v", err)
	}

	// Absence wins over authorization: a foreign actor probing a random id
	// learns only that nothing is there.
	if _, err := svc.Get(ctx, nutritionistActor(), uuid.New()); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing patient: expected not_found, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	owner := nutritionistActor()

	p, err := svc.Create(ctx, owner, CreateRequest{Name: "Alice", Email: "alice@x.com", Notes: strPtr("initial")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weight := 61.5
	updated, err := svc.Update(ctx, owner, p.ID, Patch{Name: strPtr("Alice B."), WeightKg: &weight})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Alice B." {
		t.Errorf("expected patched name, got %s", updated.Name)
	}
	if updated.WeightKg == nil || *updated.WeightKg != 61.5 {
		t.Error("expected patched weight")
	}
	if updated.Notes == nil || *updated.Notes != "initial" {
		t.Error("absent patch fields must not clear existing values")
	}
}

func TestUpdate_Denied(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	owner := nutritionistActor()

	p, err := svc.Create(ctx, owner, CreateRequest{Name: "Alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Update(ctx, nutritionistActor(), p.ID, Patch{Name: strPtr("x")}); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("foreign nutritionist: expected forbidden, got %v", err)
	}
	// The linked patient can read its profile but never writes it.
	if _, err := svc.Update(ctx, patientActor(p.ID), p.ID, Patch{Name: strPtr("x")}); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("linked patient write: expected forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, owner, uuid.New(), Patch{Name: strPtr("x")}); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing patient: expected not_found, got %v", err)
	}
}
