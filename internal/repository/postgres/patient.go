package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
)

// FindOrCreate is idempotent over phone_number: a second call with the same
// number returns the existing row untouched.
func (r *patientRepository) FindOrCreate(ctx context.Context, phone, firstName, lastName string) (*model.Patient, error) {
	query := `
		SELECT id, first_name, last_name, phone_number, created_at, updated_at
		FROM patients
		WHERE phone_number = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, phone)
	if err == nil {
		return &patient, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	insert := `
		INSERT INTO patients (id, first_name, last_name, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone_number) DO UPDATE SET updated_at = patients.updated_at
		RETURNING id, first_name, last_name, phone_number, created_at, updated_at
	`
	now := time.Now()
	err = r.db.GetContext(ctx, &patient, insert, uuid.New(), firstName, lastName, phone, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, first_name, last_name, phone_number, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}
