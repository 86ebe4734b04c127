package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a clock time within a day, stored as "HH:MM" in 24h format.
// Postgres TIME columns scan into it via the repositories.
type TimeOfDay string

func (t TimeOfDay) Before(other TimeOfDay) bool { return string(t) < string(other) }

// WorkSchedule is the recurring weekly template. Exactly one row per weekday.
type WorkSchedule struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Weekday      int       `db:"weekday" json:"weekday"` // 0=Sunday .. 6=Saturday
	IsWorkingDay bool      `db:"is_working_day" json:"is_working_day"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AvailableSlot is a bookable time-of-day template tied to a weekday.
type AvailableSlot struct {
	ID             uuid.UUID `db:"id" json:"id"`
	WorkScheduleID uuid.UUID `db:"work_schedule_id" json:"work_schedule_id"`
	StartTime      TimeOfDay `db:"start_time" json:"start_time"`
	EndTime        TimeOfDay `db:"end_time" json:"end_time"`
	IsAvailable    bool      `db:"is_available" json:"is_available"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UnavailableDay removes every slot for one concrete calendar date.
type UnavailableDay struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UnavailableDate time.Time `db:"unavailable_date" json:"unavailable_date"`
	WorkScheduleID  uuid.UUID `db:"work_schedule_id" json:"work_schedule_id"`
	IsConfirmed     bool      `db:"is_confirmed" json:"is_confirmed"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UnavailableTimeFrame removes a sub-range of slots for one concrete date.
type UnavailableTimeFrame struct {
	ID             uuid.UUID `db:"id" json:"id"`
	WorkdayDate    time.Time `db:"workday_date" json:"workday_date"`
	StartTime      TimeOfDay `db:"start_time" json:"start_time"`
	EndTime        TimeOfDay `db:"end_time" json:"end_time"`
	WorkScheduleID uuid.UUID `db:"work_schedule_id" json:"work_schedule_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is one bookable interval produced by the availability resolver.
type TimeSlot struct {
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

type UpsertWorkScheduleRequest struct {
	Weekday      *int `json:"weekday" binding:"required,min=0,max=6"`
	IsWorkingDay bool `json:"is_working_day"`
}

type CreateAvailableSlotRequest struct {
	Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm,gtfield=StartTime"`
}

type CreateUnavailableDayRequest struct {
	Date string `json:"date" binding:"required,dateonly"`
}

type CreateUnavailableTimeFrameRequest struct {
	Date      string `json:"date" binding:"required,dateonly"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm,gtfield=StartTime"`
}
