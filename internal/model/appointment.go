package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// AppointmentDuration is fixed: end_time is always derived from start_time.
	AppointmentDuration = 30 * time.Minute

	// StartTimeLayout is the external representation of a booking start time.
	StartTimeLayout = "2006-01-02T15:04"

	// MaxDailyAppointments caps bookings per doctor per calendar day.
	MaxDailyAppointments = 2
)

type Appointment struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookAppointmentRequest struct {
	StartTime string `json:"start_time" binding:"required"`
}
