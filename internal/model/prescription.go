package model

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	Details       string    `db:"details" json:"details"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type PrescriptionRequest struct {
	Details string `json:"details" binding:"required"`
}
