// Package auth holds the session token service, the bearer authentication
// middleware, and the access-control predicates shared by every domain
// handler. Authorization decisions live here and nowhere else.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role is a user role.
type Role string

const (
	RoleNutritionist Role = "nutritionist"
	RolePatient      Role = "patient"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleNutritionist || r == RolePatient
}

// Actor is the authenticated identity attached to a request. PatientID is
// set only for patient-role users and points at their linked patient
// profile.
type Actor struct {
	ID        uuid.UUID
	Role      Role
	Name      string
	Email     string
	PatientID *uuid.UUID
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated actor, or nil when the
// request is unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorKey).(*Actor)
	return actor
}
