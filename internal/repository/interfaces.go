package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rusdhi-de/clinic-api/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	Get(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	Count(ctx context.Context) (int, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	CountForDoctorBetween(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) (int, error)
	HasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error)
}

type PrescriptionRepository interface {
	Upsert(ctx context.Context, prescription *model.Prescription) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
}
