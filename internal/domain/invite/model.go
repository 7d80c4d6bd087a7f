package invite

import (
	"time"

	"github.com/google/uuid"
)

// Status is the invite lifecycle state. Active is the only state an invite
// can be accepted from; used, expired and revoked are terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// Invite is a one-time onboarding token issued by a nutritionist. Token is
// the public lookup key; ExpiresAt nil means the invite never expires.
type Invite struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	NutritionistID uuid.UUID  `db:"nutritionist_id" json:"nutritionistId"`
	Token          string     `db:"token" json:"token"`
	Email          string     `db:"email" json:"email"`
	Status         Status     `db:"status" json:"status"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Expired reports whether the invite's deadline has passed. It says nothing
// about the persisted status; callers project or persist the transition.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// View is the public shape of an invite. An active invite past its deadline
// is reported as expired here even before the stored status catches up.
type View struct {
	ID             uuid.UUID  `json:"id"`
	NutritionistID uuid.UUID  `json:"nutritionistId"`
	Token          string     `json:"token"`
	Email          string     `json:"email"`
	Status         Status     `json:"status"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (i *Invite) View(now time.Time) View {
	status := i.Status
	if status == StatusActive && i.Expired(now) {
		status = StatusExpired
	}
	return View{
		ID:             i.ID,
		NutritionistID: i.NutritionistID,
		Token:          i.Token,
		Email:          i.Email,
		Status:         status,
		ExpiresAt:      i.ExpiresAt,
		CreatedAt:      i.CreatedAt,
	}
}

// CreateRequest is the POST /invites body. ExpiresInHours nil falls back to
// the configured default; zero or negative means the invite never expires.
type CreateRequest struct {
	Email          string `json:"email" validate:"required,email"`
	ExpiresInHours *int   `json:"expiresInHours"`
}

// AcceptRequest is the POST /invites/:token/accept body. The patient
// profile is created from these fields plus the invite's email.
type AcceptRequest struct {
	Name      string   `json:"name" validate:"required"`
	Password  string   `json:"password" validate:"required,min=6"`
	BirthDate *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Sex       *string  `json:"sex" validate:"omitempty,oneof=male female other"`
	HeightCm  *float64 `json:"heightCm" validate:"omitempty,gt=0"`
	WeightKg  *float64 `json:"weightKg" validate:"omitempty,gt=0"`
	Phone     *string  `json:"phone"`
}
