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

func (r *scheduleRepository) GetWorkSchedule(ctx context.Context, weekday int) (*model.WorkSchedule, error) {
	query := `
		SELECT id, weekday, is_working_day, created_at, updated_at
		FROM work_schedules
		WHERE weekday = $1
	`
	var schedule model.WorkSchedule
	err := r.db.GetContext(ctx, &schedule, query, weekday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work schedule: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) UpsertWorkSchedule(ctx context.Context, schedule *model.WorkSchedule) error {
	query := `
		INSERT INTO work_schedules (id, weekday, is_working_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (weekday) DO UPDATE
		SET is_working_day = EXCLUDED.is_working_day, updated_at = EXCLUDED.updated_at
	`
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.Weekday,
		schedule.IsWorkingDay,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert work schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListWorkSchedules(ctx context.Context) ([]*model.WorkSchedule, error) {
	query := `
		SELECT id, weekday, is_working_day, created_at, updated_at
		FROM work_schedules
		ORDER BY weekday ASC
	`
	var schedules []*model.WorkSchedule
	err := r.db.SelectContext(ctx, &schedules, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) ListAvailableSlots(ctx context.Context, weekday int) ([]*model.AvailableSlot, error) {
	query := `
		SELECT s.id, s.work_schedule_id,
			   to_char(s.start_time, 'HH24:MI') AS start_time,
			   to_char(s.end_time, 'HH24:MI') AS end_time,
			   s.is_available, s.created_at, s.updated_at
		FROM available_slots s
		JOIN work_schedules w ON w.id = s.work_schedule_id
		WHERE w.weekday = $1
		AND s.is_available = true
		ORDER BY s.start_time ASC, s.end_time ASC
	`
	var slots []*model.AvailableSlot
	err := r.db.SelectContext(ctx, &slots, query, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return slots, nil
}

func (r *scheduleRepository) CreateAvailableSlot(ctx context.Context, slot *model.AvailableSlot) error {
	query := `
		INSERT INTO available_slots (id, work_schedule_id, start_time, end_time, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	slot.ID = uuid.New()
	now := time.Now()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.WorkScheduleID,
		string(slot.StartTime),
		string(slot.EndTime),
		slot.IsAvailable,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create available slot: %w", err)
	}
	return nil
}

func (r *scheduleRepository) DeleteAvailableSlot(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "available_slots", id)
}

func (r *scheduleRepository) GetUnavailableDay(ctx context.Context, date time.Time) (*model.UnavailableDay, error) {
	query := `
		SELECT id, unavailable_date, work_schedule_id, is_confirmed, created_at
		FROM unavailable_days
		WHERE unavailable_date = $1::date
	`
	var day model.UnavailableDay
	err := r.db.GetContext(ctx, &day, query, date.Format("2006-01-02"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get unavailable day: %w", err)
	}
	return &day, nil
}

func (r *scheduleRepository) CreateUnavailableDay(ctx context.Context, day *model.UnavailableDay) error {
	query := `
		INSERT INTO unavailable_days (id, unavailable_date, work_schedule_id, is_confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	day.ID = uuid.New()
	day.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		day.ID,
		day.UnavailableDate.Format("2006-01-02"),
		day.WorkScheduleID,
		day.IsConfirmed,
		day.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("day already marked unavailable: %w", repository.ErrSlotTaken)
		}
		return fmt.Errorf("failed to create unavailable day: %w", err)
	}
	return nil
}

func (r *scheduleRepository) DeleteUnavailableDay(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "unavailable_days", id)
}

func (r *scheduleRepository) ListUnavailableTimeFrames(ctx context.Context, date time.Time) ([]*model.UnavailableTimeFrame, error) {
	query := `
		SELECT id, workday_date,
			   to_char(start_time, 'HH24:MI') AS start_time,
			   to_char(end_time, 'HH24:MI') AS end_time,
			   work_schedule_id, created_at
		FROM unavailable_time_frames
		WHERE workday_date = $1::date
		ORDER BY start_time ASC
	`
	var frames []*model.UnavailableTimeFrame
	err := r.db.SelectContext(ctx, &frames, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list unavailable time frames: %w", err)
	}
	return frames, nil
}

func (r *scheduleRepository) CreateUnavailableTimeFrame(ctx context.Context, frame *model.UnavailableTimeFrame) error {
	query := `
		INSERT INTO unavailable_time_frames (id, workday_date, start_time, end_time, work_schedule_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	frame.ID = uuid.New()
	frame.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		frame.ID,
		frame.WorkdayDate.Format("2006-01-02"),
		string(frame.StartTime),
		string(frame.EndTime),
		frame.WorkScheduleID,
		frame.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create unavailable time frame: %w", err)
	}
	return nil
}

func (r *scheduleRepository) DeleteUnavailableTimeFrame(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "unavailable_time_frames", id)
}

func (r *scheduleRepository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
