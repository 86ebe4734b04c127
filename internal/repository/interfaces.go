package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/model"
)

// Sentinel errors the postgres implementations translate driver failures into.
var (
	ErrNotFound  = errors.New("record not found")
	ErrSlotTaken = errors.New("slot already has a confirmed appointment")
)

// All repository interfaces in one file
type (
	// ScheduleRepository owns the weekly template and its exceptions.
	ScheduleRepository interface {
		GetWorkSchedule(ctx context.Context, weekday int) (*model.WorkSchedule, error)
		UpsertWorkSchedule(ctx context.Context, schedule *model.WorkSchedule) error
		ListWorkSchedules(ctx context.Context) ([]*model.WorkSchedule, error)

		ListAvailableSlots(ctx context.Context, weekday int) ([]*model.AvailableSlot, error)
		CreateAvailableSlot(ctx context.Context, slot *model.AvailableSlot) error
		DeleteAvailableSlot(ctx context.Context, id uuid.UUID) error

		GetUnavailableDay(ctx context.Context, date time.Time) (*model.UnavailableDay, error)
		CreateUnavailableDay(ctx context.Context, day *model.UnavailableDay) error
		DeleteUnavailableDay(ctx context.Context, id uuid.UUID) error

		ListUnavailableTimeFrames(ctx context.Context, date time.Time) ([]*model.UnavailableTimeFrame, error)
		CreateUnavailableTimeFrame(ctx context.Context, frame *model.UnavailableTimeFrame) error
		DeleteUnavailableTimeFrame(ctx context.Context, id uuid.UUID) error
	}

	// AppointmentRepository persists bookings. Create must run its
	// existence re-check and the insert in one transaction and report a
	// uniqueness violation as ErrSlotTaken.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListActiveByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
		ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
		SetCancellationToken(ctx context.Context, id uuid.UUID, token string) error
		Cancel(ctx context.Context, id uuid.UUID) error
	}

	PatientRepository interface {
		FindOrCreate(ctx context.Context, phone, firstName, lastName string) (*model.Patient, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}
)
