package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/internal/repository"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
)

type prescriptionRepository struct {
	db *sqlx.DB
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

// Upsert keeps the one-prescription-per-appointment invariant: the unique
// constraint on appointment_id makes the insert update in place instead.
func (r *prescriptionRepository) Upsert(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, appointment_id, patient_id, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (appointment_id) DO UPDATE
		SET details = EXCLUDED.details, updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.AppointmentID,
		prescription.PatientID,
		prescription.Details,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	query := `SELECT * FROM prescriptions WHERE appointment_id = $1`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("prescription", err)
		}
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `SELECT * FROM prescriptions WHERE patient_id = $1 ORDER BY updated_at DESC`
	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient prescriptions: %w", err)
	}
	return prescriptions, nil
}
