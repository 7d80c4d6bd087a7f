package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinical profile owned by the nutritionist who created it.
// OwnerID never changes after creation. A patient may exist with no linked
// login account; the link is established only through invite acceptance.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	OwnerID   uuid.UUID  `db:"owner_id" json:"ownerId"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	BirthDate *string    `db:"birth_date" json:"birthDate,omitempty"`
	Sex       *string    `db:"sex" json:"sex,omitempty"`
	HeightCm  *float64   `db:"height_cm" json:"heightCm,omitempty"`
	WeightKg  *float64   `db:"weight_kg" json:"weightKg,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateRequest is the POST /patients body. Patient emails are not unique;
// two nutritionists may each track a patient with the same address.
type CreateRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	BirthDate *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Sex       *string  `json:"sex" validate:"omitempty,oneof=male female other"`
	HeightCm  *float64 `json:"heightCm" validate:"omitempty,gt=0"`
	WeightKg  *float64 `json:"weightKg" validate:"omitempty,gt=0"`
	Phone     *string  `json:"phone"`
	Notes     *string  `json:"notes"`
}

// Patch carries a partial update. Only non-nil fields overwrite; absence is
// expressed by the nil pointer, never by a sentinel value.
type Patch struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	BirthDate *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Sex       *string  `json:"sex" validate:"omitempty,oneof=male female other"`
	HeightCm  *float64 `json:"heightCm" validate:"omitempty,gt=0"`
	WeightKg  *float64 `json:"weightKg" validate:"omitempty,gt=0"`
	Phone     *string  `json:"phone"`
	Notes     *string  `json:"notes"`
}

// Apply overwrites the patient's mutable fields with the patch's present
// fields. OwnerID and timestamps are not patchable.
func (p Patch) Apply(target *Patient) {
	if p.Name != nil {
		target.Name = *p.Name
	}
	if p.Email != nil {
		target.Email = *p.Email
	}
	if p.BirthDate != nil {
		target.BirthDate = p.BirthDate
	}
	if p.Sex != nil {
		target.Sex = p.Sex
	}
	if p.HeightCm != nil {
		target.HeightCm = p.HeightCm
	}
	if p.WeightKg != nil {
		target.WeightKg = p.WeightKg
	}
	if p.Phone != nil {
		target.Phone = p.Phone
	}
	if p.Notes != nil {
		target.Notes = p.Notes
	}
}
