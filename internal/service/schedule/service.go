package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
	"github.com/praxisdesk/booking-api/internal/service/availability"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
)

// Service manages the weekly template and its exceptions: the availability
// resolver's inputs.
type Service struct {
	repo     repository.ScheduleRepository
	resolver *availability.Service
}

func NewService(repo repository.ScheduleRepository, resolver *availability.Service) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) UpsertWorkSchedule(ctx context.Context, weekday int, isWorkingDay bool) (*model.WorkSchedule, error) {
	schedule := &model.WorkSchedule{Weekday: weekday, IsWorkingDay: isWorkingDay}
	if err := s.repo.UpsertWorkSchedule(ctx, schedule); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("upsert work schedule: %w", err))
	}
	s.resolver.Flush()
	return schedule, nil
}

func (s *Service) ListWorkSchedules(ctx context.Context) ([]*model.WorkSchedule, error) {
	schedules, err := s.repo.ListWorkSchedules(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("list work schedules: %w", err))
	}
	return schedules, nil
}

func (s *Service) CreateSlot(ctx context.Context, weekday int, start, end string) (*model.AvailableSlot, error) {
	if err := validateTimeRange(start, end); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	schedule, err := s.scheduleForWeekday(ctx, weekday)
	if err != nil {
		return nil, err
	}

	slot := &model.AvailableSlot{
		WorkScheduleID: schedule.ID,
		StartTime:      model.TimeOfDay(start),
		EndTime:        model.TimeOfDay(end),
		IsAvailable:    true,
	}
	if err := s.repo.CreateAvailableSlot(ctx, slot); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("create slot: %w", err))
	}
	s.resolver.Flush()
	return slot, nil
}

func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAvailableSlot(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("slot", err)
		}
		return apperrors.Storage(fmt.Errorf("delete slot: %w", err))
	}
	s.resolver.Flush()
	return nil
}

func (s *Service) CreateUnavailableDay(ctx context.Context, dateStr string) (*model.UnavailableDay, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.Validation("invalid date", err)
	}

	schedule, err := s.scheduleForWeekday(ctx, dateutil.Weekday(date))
	if err != nil {
		return nil, err
	}

	day := &model.UnavailableDay{
		UnavailableDate: date,
		WorkScheduleID:  schedule.ID,
		IsConfirmed:     true,
	}
	if err := s.repo.CreateUnavailableDay(ctx, day); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.Conflict("day already marked unavailable", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("create unavailable day: %w", err))
	}
	s.resolver.Invalidate(date)
	return day, nil
}

func (s *Service) DeleteUnavailableDay(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteUnavailableDay(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("unavailable day", err)
		}
		return apperrors.Storage(fmt.Errorf("delete unavailable day: %w", err))
	}
	s.resolver.Flush()
	return nil
}

func (s *Service) ListUnavailableTimeFrames(ctx context.Context, dateStr string) ([]*model.UnavailableTimeFrame, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.Validation("invalid date", err)
	}
	frames, err := s.repo.ListUnavailableTimeFrames(ctx, date)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("list time frames: %w", err))
	}
	return frames, nil
}

func (s *Service) CreateUnavailableTimeFrame(ctx context.Context, dateStr, start, end string) (*model.UnavailableTimeFrame, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.Validation("invalid date", err)
	}
	if err := validateTimeRange(start, end); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	schedule, err := s.scheduleForWeekday(ctx, dateutil.Weekday(date))
	if err != nil {
		return nil, err
	}

	frame := &model.UnavailableTimeFrame{
		WorkdayDate:    date,
		StartTime:      model.TimeOfDay(start),
		EndTime:        model.TimeOfDay(end),
		WorkScheduleID: schedule.ID,
	}
	if err := s.repo.CreateUnavailableTimeFrame(ctx, frame); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("create time frame: %w", err))
	}
	s.resolver.Invalidate(date)
	return frame, nil
}

func (s *Service) DeleteUnavailableTimeFrame(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteUnavailableTimeFrame(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("time frame", err)
		}
		return apperrors.Storage(fmt.Errorf("delete time frame: %w", err))
	}
	s.resolver.Flush()
	return nil
}

func (s *Service) scheduleForWeekday(ctx context.Context, weekday int) (*model.WorkSchedule, error) {
	schedule, err := s.repo.GetWorkSchedule(ctx, weekday)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("work schedule", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("load work schedule: %w", err))
	}
	return schedule, nil
}

func validateTimeRange(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil {
		return fmt.Errorf("invalid start time %q", start)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return fmt.Errorf("invalid end time %q", end)
	}
	if start >= end {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}
