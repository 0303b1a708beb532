package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/pkg/security"
)

// schema is applied once at startup. The btree_gist exclusion constraint
// backs the no-overlap invariant at the store level: two bookings for the
// same doctor with intersecting [start_time, end_time) ranges cannot both
// commit, whichever instance they arrive on.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS patients (
	id UUID PRIMARY KEY,
	phone TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS admins (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS doctors (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	specialization TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS appointments (
	id UUID PRIMARY KEY,
	patient_id UUID NOT NULL REFERENCES patients(id),
	doctor_id UUID NOT NULL REFERENCES doctors(id),
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT appointments_no_overlap EXCLUDE USING gist (
		doctor_id WITH =,
		tstzrange(start_time, end_time) WITH &&
	)
);

CREATE INDEX IF NOT EXISTS idx_appointments_doctor_start
	ON appointments (doctor_id, start_time);
CREATE INDEX IF NOT EXISTS idx_appointments_patient
	ON appointments (patient_id);

CREATE TABLE IF NOT EXISTS prescriptions (
	id UUID PRIMARY KEY,
	appointment_id UUID NOT NULL UNIQUE REFERENCES appointments(id) ON DELETE CASCADE,
	patient_id UUID NOT NULL REFERENCES patients(id),
	details TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// seedDoctors is the fixed roster created on first startup.
var seedDoctors = []model.Doctor{
	{Name: "Dr. Kefayet", Specialization: "Cardiologist"},
	{Name: "Dr. Rifat", Specialization: "Dermatologist"},
}

// Bootstrap creates the schema if it does not exist yet.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Seed inserts the doctor roster and the admin account when absent.
// Check-then-insert, idempotent: subsequent startups are no-ops.
func Seed(ctx context.Context, db *sqlx.DB, adminEmail, adminPassword string, hasher security.PasswordHasher) error {
	var doctorCount int
	if err := db.GetContext(ctx, &doctorCount, `SELECT COUNT(*) FROM doctors`); err != nil {
		return fmt.Errorf("failed to count doctors: %w", err)
	}

	if doctorCount == 0 {
		for _, d := range seedDoctors {
			_, err := db.ExecContext(ctx,
				`INSERT INTO doctors (id, name, specialization, created_at) VALUES ($1, $2, $3, $4)`,
				uuid.New(), d.Name, d.Specialization, time.Now(),
			)
			if err != nil {
				return fmt.Errorf("failed to seed doctor %s: %w", d.Name, err)
			}
		}
		log.Info().Int("count", len(seedDoctors)).Msg("seeded doctor roster")
	}

	var adminCount int
	if err := db.GetContext(ctx, &adminCount, `SELECT COUNT(*) FROM admins WHERE email = $1`, adminEmail); err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if adminCount == 0 {
		hash, err := hasher.Hash(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO admins (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.New(), adminEmail, hash, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		log.Info().Str("email", adminEmail).Msg("seeded admin account")
	}

	return nil
}
