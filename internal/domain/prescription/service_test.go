package prescription

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type mockRepo struct {
	store map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Prescription)}
}
func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	m.store[p.ID] = p
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	return m.store[id], nil
}
func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	p.UpdatedAt = time.Now().UTC()
	m.store[p.ID] = p
	return nil
}
func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, error) {
	out := make([]*Prescription, 0)
	for _, p := range m.store {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
func (m *mockRepo) LatestPublished(_ context.Context, patientID uuid.UUID) (*Prescription, error) {
	var best *Prescription
	for _, p := range m.store {
		if p.PatientID != patientID || p.Status != StatusPublished || p.PublishedAt == nil {
			continue
		}
		if best == nil || p.PublishedAt.After(*best.PublishedAt) {
			best = p
		}
	}
	return best, nil
}

type mockDirectory struct {
	refs map[uuid.UUID]*PatientRef
}

func (m *mockDirectory) PatientRef(_ context.Context, id uuid.UUID) (*PatientRef, error) {
	return m.refs[id], nil
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	owner     *auth.Actor
	patientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := &auth.Actor{ID: uuid.New(), Role: auth.RoleNutritionist, Name: "Dr. Pro"}
	patientID := uuid.New()
	dir := &mockDirectory{refs: map[uuid.UUID]*PatientRef{
		patientID: {ID: patientID, OwnerID: owner.ID},
	}}
	repo := newMockRepo()
	return &fixture{svc: NewService(repo, dir), repo: repo, owner: owner, patientID: patientID}
}

func linkedPatientActor(patientID uuid.UUID) *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Role: auth.RolePatient, PatientID: &patientID}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, CreateRequest{
		PatientID: f.patientID,
		Title:     "Week 1",
		Meals: []Meal{
			{Name: "Breakfast", Items: []MealItem{{Description: "Oats"}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusDraft {
		t.Errorf("expected default draft status, got %s", p.Status)
	}
	if p.PublishedAt != nil {
		t.Error("draft must not carry a publish timestamp")
	}
	if p.NutritionistID != f.owner.ID {
		t.Error("author must be the acting nutritionist")
	}
	if p.Meals[0].ID == uuid.Nil || p.Meals[0].Items[0].ID == uuid.Nil {
		t.Error("meals and items must receive identifiers")
	}
}

func TestCreate_PublishedStampsImmediately(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		PatientID: f.patientID,
		Title:     "Week 1",
		Status:    StatusPublished,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PublishedAt == nil {
		t.Error("creating as published must stamp publishedAt")
	}
}

func TestCreate_Denied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := CreateRequest{PatientID: f.patientID, Title: "Week 1"}

	other := &auth.Actor{ID: uuid.New(), Role: auth.RoleNutritionist}
	if _, err := f.svc.Create(ctx, other, req); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("foreign nutritionist: expected forbidden, got %v", err)
	}

	req.PatientID = uuid.New()
	if _, err := f.svc.Create(ctx, f.owner, req); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing patient: expected not_found, got %v", err)
	}
}

func TestUpdate_PublishStampsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	published := StatusPublished
	first, err := f.svc.Update(ctx, f.owner, p.ID, Patch{Status: &published})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PublishedAt == nil {
		t.Fatal("transition to published must stamp publishedAt")
	}
	stamp := *first.PublishedAt

	// A second update-to-published leaves the original stamp intact, and so
	// does bouncing through draft.
	draft := StatusDraft
	if _, err := f.svc.Update(ctx, f.owner, p.ID, Patch{Status: &draft}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.Update(ctx, f.owner, p.ID, Patch{Status: &published})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.PublishedAt == nil || !second.PublishedAt.Equal(stamp) {
		t.Error("update-to-published must not restamp an existing publishedAt")
	}
}

func TestPublish_AlwaysRestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := f.svc.Publish(ctx, f.owner, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stamp := *first.PublishedAt

	time.Sleep(5 * time.Millisecond)
	second, err := f.svc.Publish(ctx, f.owner, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.PublishedAt.After(stamp) {
		t.Error("publish must restamp publishedAt on every call")
	}
}

func TestUpdate_Denied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	title := "hijack"
	other := &auth.Actor{ID: uuid.New(), Role: auth.RoleNutritionist}
	if _, err := f.svc.Update(ctx, other, p.ID, Patch{Title: &title}); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("foreign nutritionist: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Update(ctx, f.owner, uuid.New(), Patch{Title: &title}); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing prescription: expected not_found, got %v", err)
	}
}

func TestGet_AccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.Get(ctx, f.owner, p.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	// The linked patient can read drafts as well as published plans.
	if _, err := f.svc.Get(ctx, linkedPatientActor(f.patientID), p.ID); err != nil {
		t.Errorf("linked patient read failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, linkedPatientActor(uuid.New()), p.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("unlinked patient: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.owner, uuid.New()); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing prescription: expected not_found, got %v", err)
	}
}

func TestListForPatient_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Week"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The mock orders by CreatedAt; space the records out.
		p.CreatedAt = p.CreatedAt.Add(time.Duration(i) * time.Second)
	}

	out, err := f.svc.ListForPatient(ctx, f.owner, f.patientID, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 prescriptions, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatal("expected newest-first ordering")
		}
	}
}

func TestLatestPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No published plan yet: empty result, not an error.
	p, err := f.svc.LatestPublished(ctx, f.owner, f.patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected empty result, got %+v", p)
	}

	draft, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Draft"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	older, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Older", Status: StatusPublished})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	past := time.Now().UTC().Add(-time.Hour)
	older.PublishedAt = &past
	newest, err := f.svc.Create(ctx, f.owner, CreateRequest{PatientID: f.patientID, Title: "Newest", Status: StatusPublished})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := f.svc.LatestPublished(ctx, f.owner, f.patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != newest.ID {
		t.Fatalf("expected the newest published plan, got %+v", got)
	}
	if got.ID == draft.ID {
		t.Error("drafts must never be returned as latest")
	}
}

func TestDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src, err := f.svc.Create(ctx, f.owner, CreateRequest{
		PatientID: f.patientID,
		Title:     "Week 1",
		Status:    StatusPublished,
		Meals:     []Meal{{Name: "Lunch", Items: []MealItem{{Description: "Rice", Substitutions: []string{"quinoa"}}}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cp, err := f.svc.Duplicate(ctx, f.owner, src.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp.ID == src.ID {
		t.Error("duplicate must get a new id")
	}
	if cp.Status != StatusDraft || cp.PublishedAt != nil {
		t.Error("duplicate must start as an unpublished draft")
	}
	if cp.Title != "Week 1 (copy)" {
		t.Errorf("unexpected title: %s", cp.Title)
	}
	if len(cp.Meals) != 1 || cp.Meals[0].ID == src.Meals[0].ID {
		t.Error("duplicated meals must get new identifiers")
	}
	if cp.Meals[0].Items[0].Description != "Rice" {
		t.Error("duplicated meal content must be preserved")
	}
}
