package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Status is the prescription lifecycle state. Draft is the initial state;
// published is reachable from draft and sticky with respect to PublishedAt,
// which is stamped on first publish and never cleared afterwards.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Prescription is a dated meal plan authored by a nutritionist for one of
// their patients. PatientID and NutritionistID are immutable after creation.
type Prescription struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patientId"`
	NutritionistID uuid.UUID  `db:"nutritionist_id" json:"nutritionistId"`
	Title          string     `db:"title" json:"title"`
	Status         Status     `db:"status" json:"status"`
	Meals          []Meal     `db:"meals" json:"meals"`
	GeneralNotes   *string    `db:"general_notes" json:"generalNotes,omitempty"`
	PublishedAt    *time.Time `db:"published_at" json:"publishedAt"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Meal is one entry in a plan's ordered meal sequence. Meals are stored as
// a document inside the prescription row, not as separate records.
type Meal struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name" validate:"required"`
	Items []MealItem `json:"items" validate:"dive"`
	Notes *string    `json:"notes,omitempty"`
}

type MealItem struct {
	ID            uuid.UUID `json:"id"`
	Description   string    `json:"description" validate:"required"`
	Amount        *string   `json:"amount,omitempty"`
	Substitutions []string  `json:"substitutions,omitempty"`
}

// CreateRequest is the POST /prescriptions body. Status defaults to draft
// when omitted; creating directly as published stamps PublishedAt.
type CreateRequest struct {
	PatientID    uuid.UUID `json:"patientId" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Status       Status    `json:"status" validate:"omitempty,oneof=draft published"`
	Meals        []Meal    `json:"meals" validate:"dive"`
	GeneralNotes *string   `json:"generalNotes"`
}

// Patch carries a partial update. PatientID and NutritionistID are not
// patchable. Setting Status to published stamps PublishedAt only if it was
// never stamped before; setting it back to draft leaves PublishedAt alone.
type Patch struct {
	Title        *string `json:"title" validate:"omitempty,min=1"`
	Status       *Status `json:"status" validate:"omitempty,oneof=draft published"`
	Meals        *[]Meal `json:"meals" validate:"omitempty,dive"`
	GeneralNotes *string `json:"generalNotes"`
}

func (p Patch) Apply(target *Prescription) {
	if p.Title != nil {
		target.Title = *p.Title
	}
	if p.Status != nil {
		target.Status = *p.Status
	}
	if p.Meals != nil {
		target.Meals = normalizeMeals(*p.Meals)
	}
	if p.GeneralNotes != nil {
		target.GeneralNotes = p.GeneralNotes
	}
}

// normalizeMeals assigns identifiers to meals and items the client sent
// without one, preserving order.
func normalizeMeals(meals []Meal) []Meal {
	for i := range meals {
		if meals[i].ID == uuid.Nil {
			meals[i].ID = uuid.New()
		}
		for j := range meals[i].Items {
			if meals[i].Items[j].ID == uuid.Nil {
				meals[i].Items[j].ID = uuid.New()
			}
		}
	}
	return meals
}

// freshMeals deep-copies meals with all-new identifiers, used when
// duplicating a prescription.
func freshMeals(meals []Meal) []Meal {
	out := make([]Meal, len(meals))
	for i, m := range meals {
		cp := m
		cp.ID = uuid.New()
		cp.Items = make([]MealItem, len(m.Items))
		for j, it := range m.Items {
			itCp := it
			itCp.ID = uuid.New()
			itCp.Substitutions = append([]string(nil), it.Substitutions...)
			cp.Items[j] = itCp
		}
		out[i] = cp
	}
	return out
}
