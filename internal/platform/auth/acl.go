package auth

import (
	"github.com/google/uuid"
)

// The predicates below are the single source of truth for record access.
// Handlers resolve the resource first (a missing resource is a 404 before
// any authorization question is asked), then consult these.

// CanReadPatient reports whether the actor may read a patient profile:
// the owning nutritionist, or the patient user linked to that profile.
func CanReadPatient(actor *Actor, ownerID, patientID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case RoleNutritionist:
		return actor.ID == ownerID
	case RolePatient:
		return actor.PatientID != nil && *actor.PatientID == patientID
	}
	return false
}

// CanWritePatient reports whether the actor may modify a patient profile.
// Only the owning nutritionist writes; patients never do.
func CanWritePatient(actor *Actor, ownerID uuid.UUID) bool {
	return actor != nil && actor.Role == RoleNutritionist && actor.ID == ownerID
}

// CanReadPrescription applies the patient read predicate through the
// prescription's owning patient.
func CanReadPrescription(actor *Actor, patientOwnerID, patientID uuid.UUID) bool {
	return CanReadPatient(actor, patientOwnerID, patientID)
}

// CanWritePrescription reports whether the actor may modify a prescription:
// only its authoring nutritionist.
func CanWritePrescription(actor *Actor, nutritionistID uuid.UUID) bool {
	return actor != nil && actor.Role == RoleNutritionist && actor.ID == nutritionistID
}
