package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

const appointmentColumns = `
	id, patient_id, appointment_date,
	to_char(appointment_time, 'HH24:MI') AS appointment_time,
	status, visit_type_id, consult_type_id, practice_type_id,
	cancellation_token, created_at, updated_at
`

// Create runs the slot re-check and the insert in one transaction. The
// partial unique index on (appointment_date, appointment_time) for
// non-cancelled rows is the final arbiter under concurrent load; either
// rejection path surfaces as ErrSlotTaken.
func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var occupied bool
	err = tx.GetContext(ctx, &occupied, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE appointment_date = $1::date
			AND appointment_time = $2
			AND status <> 'cancelled'
		)
	`, appointment.AppointmentDate.Format("2006-01-02"), string(appointment.AppointmentTime))
	if err != nil {
		return fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	if occupied {
		return repository.ErrSlotTaken
	}

	appointment.ID = uuid.New()
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, patient_id, appointment_date, appointment_time,
			status, visit_type_id, consult_type_id, practice_type_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		appointment.ID,
		appointment.PatientID,
		appointment.AppointmentDate.Format("2006-01-02"),
		string(appointment.AppointmentTime),
		appointment.Status,
		appointment.VisitTypeID,
		appointment.ConsultTypeID,
		appointment.PracticeTypeID,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListActiveByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE appointment_date = $1::date
		AND status <> 'cancelled'
		ORDER BY appointment_time ASC
	`, appointmentColumns)

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE appointment_date = $1::date
		ORDER BY appointment_time ASC
	`, appointmentColumns)

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) SetCancellationToken(ctx context.Context, id uuid.UUID, token string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET cancellation_token = $1, updated_at = $2
		WHERE id = $3
	`, token, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to store cancellation token: %w", err)
	}
	return requireRowsAffected(result)
}

// Cancel flips the status and clears the stored token, which is what makes
// a cancellation token single-use before its signature expires.
func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET status = 'cancelled', cancellation_token = NULL, updated_at = $1
		WHERE id = $2
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
