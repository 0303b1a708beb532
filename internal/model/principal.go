package model

import (
	"github.com/google/uuid"
)

// PrincipalKind discriminates the two authenticated actor types.
type PrincipalKind string

const (
	PrincipalKindPatient PrincipalKind = "patient"
	PrincipalKindAdmin   PrincipalKind = "admin"
)

// Principal is an authenticated actor resolved from a session token,
// either a patient or an admin.
type Principal struct {
	Kind PrincipalKind `json:"kind"`
	ID   uuid.UUID     `json:"id"`
}

func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalKindAdmin
}

func (p Principal) IsPatient() bool {
	return p.Kind == PrincipalKindPatient
}
