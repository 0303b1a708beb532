package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rusdhi-de/clinic-api/internal/email"
	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/internal/repository"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
)

type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	emailSvc    email.Service
	metrics     *metrics.Metrics

	// locks serializes booking validation+write per doctor, so two
	// concurrent requests for the same doctor cannot both pass the
	// daily-cap and overlap checks before either commits.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(repo repository.AppointmentRepository, doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository, emailSvc email.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		emailSvc:    emailSvc,
		metrics:     m,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) doctorLock(doctorID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[doctorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[doctorID] = l
	}
	return l
}

// Book applies the slot-allocation rules and creates the appointment.
// Checks run in order, short-circuiting on the first failure; no failure
// path writes any state.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, startTimeRaw string) (*model.Appointment, error) {
	start, err := time.ParseInLocation(model.StartTimeLayout, startTimeRaw, time.Local)
	if err != nil {
		return nil, apperrors.BadRequest("invalid datetime format", err)
	}

	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	end := start.Add(model.AppointmentDuration)
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	lock := s.doctorLock(doctorID)
	lock.Lock()
	defer lock.Unlock()

	count, err := s.repo.CountForDoctorBetween(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxDailyAppointments {
		s.metrics.BookingConflicts.WithLabelValues(metrics.ConflictReasonDailyCap).Inc()
		return nil, apperrors.Conflict("doctor already has 2 appointments on this day", nil)
	}

	overlaps, err := s.repo.HasOverlap(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	if overlaps {
		s.metrics.BookingConflicts.WithLabelValues(metrics.ConflictReasonOverlap).Inc()
		return nil, apperrors.Conflict("this time slot is already booked", nil)
	}

	appointment := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			// Raced with a booking on another instance; the exclusion
			// constraint rejected the row.
			s.metrics.BookingConflicts.WithLabelValues(metrics.ConflictReasonOverlap).Inc()
		}
		return nil, err
	}

	s.metrics.BookingsTotal.Inc()
	s.notifyBooked(ctx, appointment, doctor)

	return appointment, nil
}

func (s *Service) notifyBooked(ctx context.Context, apt *model.Appointment, doctor *model.Doctor) {
	patient, err := s.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		log.Warn().Err(err).Str("patient_id", apt.PatientID.String()).Msg("skipping booking confirmation mail")
		return
	}
	if err := s.emailSvc.SendBookingConfirmation(ctx, patient.Email, doctor.Name, apt.StartTime, apt.EndTime); err != nil {
		log.Warn().Err(err).Str("email", patient.Email).Msg("failed to send booking confirmation")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// List returns every appointment, ordered by start time.
func (s *Service) List(ctx context.Context) ([]*model.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// Cancel hard-deletes an appointment. Its prescription, if any, goes with
// it via the store's cascade.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.AppointmentsDeleted.Inc()
	return nil
}
