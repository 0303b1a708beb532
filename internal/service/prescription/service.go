package prescription

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/internal/repository"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
)

type Service struct {
	repo            repository.PrescriptionRepository
	appointmentRepo repository.AppointmentRepository
	metrics         *metrics.Metrics
}

func NewService(repo repository.PrescriptionRepository, appointmentRepo repository.AppointmentRepository,
	m *metrics.Metrics) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		metrics:         m,
	}
}

// Upsert writes the prescription for an appointment: created when absent,
// details overwritten when present. Exactly one row per appointment.
func (s *Service) Upsert(ctx context.Context, appointmentID uuid.UUID, details string) (*model.Prescription, error) {
	appointment, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	prescription := &model.Prescription{
		Base:          model.Base{ID: uuid.New()},
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Details:       details,
	}

	if err := s.repo.Upsert(ctx, prescription); err != nil {
		return nil, err
	}

	s.metrics.PrescriptionUpserts.Inc()
	return prescription, nil
}

// GetForAppointment returns the appointment's prescription, or nil when
// none has been recorded yet.
func (s *Service) GetForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prescription, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// MedicineReminders filters prescriptions whose details mention "medicine".
// Literal case-insensitive substring match, nothing richer.
func MedicineReminders(prescriptions []*model.Prescription) []*model.Prescription {
	var reminders []*model.Prescription
	for _, p := range prescriptions {
		if strings.Contains(strings.ToLower(p.Details), "medicine") {
			reminders = append(reminders, p)
		}
	}
	return reminders
}
