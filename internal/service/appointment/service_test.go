package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusdhi-de/clinic-api/internal/config"
	"github.com/rusdhi-de/clinic-api/internal/email"
	"github.com/rusdhi-de/clinic-api/internal/model"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("appointment_test")

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		cp := *apt
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.PatientID == patientID {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountForDoctorBetween(_ context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID && !apt.StartTime.Before(dayStart) && apt.StartTime.Before(dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) HasOverlap(_ context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID && apt.StartTime.Before(end) && apt.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func newFakeDoctorRepo(doctors ...*model.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
	for _, d := range doctors {
		r.doctors[d.ID] = d
	}
	return r
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (r *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Count(_ context.Context) (int, error) {
	return len(r.doctors), nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo(patients ...*model.Patient) *fakePatientRepo {
	r := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	for _, p := range patients {
		r.patients[p.ID] = p
	}
	return r
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (r *fakePatientRepo) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *fakePatientRepo) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	for _, p := range r.patients {
		if p.Email == email || p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T) (*Service, *fakeAppointmentRepo, *model.Doctor, *model.Patient) {
	t.Helper()

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Name:           "Dr. Kefayet",
		Specialization: "Cardiologist",
	}
	patient := &model.Patient{
		Base:  model.Base{ID: uuid.New()},
		Phone: "01700000000",
		Email: "patient@example.com",
	}

	repo := newFakeAppointmentRepo()
	svc := NewService(
		repo,
		newFakeDoctorRepo(doctor),
		newFakePatientRepo(patient),
		email.NewService(config.SMTPConfig{}),
		testMetrics,
	)
	return svc, repo, doctor, patient
}

func TestBookScenario(t *testing.T) {
	svc, repo, doctor, patient := newTestService(t)
	ctx := context.Background()

	// First slot of the day.
	apt, err := svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:00")
	require.NoError(t, err)
	assert.Equal(t, patient.ID, apt.PatientID)
	assert.Equal(t, doctor.ID, apt.DoctorID)
	assert.Equal(t, 30*time.Minute, apt.EndTime.Sub(apt.StartTime))

	// Back-to-back slot: shares an endpoint, does not overlap.
	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:30")
	require.NoError(t, err)

	// Overlapping slot is rejected.
	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:15")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "already booked")

	// Daily cap: a third slot the same day fails even without overlap.
	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T14:00")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "2 appointments on this day")

	// The next day is unconstrained.
	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-03T09:00")
	require.NoError(t, err)

	assert.Len(t, repo.appointments, 3)
}

func TestBookMalformedStartTime(t *testing.T) {
	svc, repo, doctor, patient := newTestService(t)

	for _, raw := range []string{"tomorrow", "2026-03-02 09:00", "2026-03-02T09:00:00", ""} {
		_, err := svc.Book(context.Background(), patient.ID, doctor.ID, raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest), "input %q", raw)
	}

	assert.Empty(t, repo.appointments, "no appointment may be created on invalid input")
}

func TestBookUnknownDoctor(t *testing.T) {
	svc, repo, _, patient := newTestService(t)

	_, err := svc.Book(context.Background(), patient.ID, uuid.New(), "2026-03-02T09:00")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, repo.appointments)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	svc, repo, doctor, patient := newTestService(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), patient.ID, doctor.ID, "2026-03-02T09:00")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent booking may win the slot")
	assert.Len(t, repo.appointments, 1)
}

func TestCancel(t *testing.T) {
	svc, repo, doctor, patient := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:00")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, apt.ID))
	assert.Empty(t, repo.appointments)

	// Cancelling again reports not found.
	err = svc.Cancel(ctx, apt.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCancelFreesSlot(t *testing.T) {
	svc, _, doctor, patient := newTestService(t)
	ctx := context.Background()

	apt, err := svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:00")
	require.NoError(t, err)

	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:00")
	require.Error(t, err)

	require.NoError(t, svc.Cancel(ctx, apt.ID))

	_, err = svc.Book(ctx, patient.ID, doctor.ID, "2026-03-02T09:00")
	assert.NoError(t, err, "cancelled slot can be rebooked")
}
