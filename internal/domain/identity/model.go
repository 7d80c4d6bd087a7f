package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutrio/nutrio/internal/platform/auth"
)

// User maps to the users table. A patient-role user carries a PatientID
// back-reference to its clinical profile; the link is set once at invite
// acceptance and never reassigned.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Role         auth.Role  `db:"role" json:"role"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	PatientID    *uuid.UUID `db:"patient_id" json:"patientId,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Profile is the public view of a user returned by /me and invite
// acceptance.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Role      auth.Role  `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	PatientID *uuid.UUID `json:"patientId,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		PatientID: u.PatientID,
	}
}

// Actor converts the user to the request-scoped identity consumed by the
// access-control predicates.
func (u *User) Actor() *auth.Actor {
	return &auth.Actor{
		ID:        u.ID,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		PatientID: u.PatientID,
	}
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
