package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
	"github.com/praxisdesk/booking-api/pkg/metrics"
)

// ErrNoSchedule means no work-schedule row exists for the requested weekday.
var ErrNoSchedule = errors.New("no work schedule configured for weekday")

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

type Service struct {
	scheduleRepo repository.ScheduleRepository
	apptRepo     repository.AppointmentRepository
	cache        *gocache.Cache
	metrics      *metrics.Metrics
}

func NewService(scheduleRepo repository.ScheduleRepository, apptRepo repository.AppointmentRepository) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		apptRepo:     apptRepo,
		cache:        gocache.New(cacheTTL, cacheCleanup),
	}
}

// WithMetrics turns on cache instrumentation.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Resolve returns the ordered set of bookable slots for a date. Results are
// cached briefly per date key; the booking service invalidates the entry
// whenever it writes, and the booking transaction never trusts this cache.
func (s *Service) Resolve(ctx context.Context, date time.Time) ([]model.TimeSlot, error) {
	key := dateutil.Key(date)
	if cached, ok := s.cache.Get(key); ok {
		s.countCache("hit")
		return cached.([]model.TimeSlot), nil
	}
	s.countCache("miss")

	slots, err := s.resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, slots, gocache.DefaultExpiration)
	return slots, nil
}

// Invalidate drops the cached result for a date after a booking or
// cancellation changed it.
func (s *Service) Invalidate(date time.Time) {
	s.cache.Delete(dateutil.Key(date))
}

// Flush drops every cached result. Template changes affect all future dates
// of a weekday, so date-level invalidation is not enough.
func (s *Service) Flush() {
	s.cache.Flush()
}

func (s *Service) countCache(outcome string) {
	if s.metrics != nil {
		s.metrics.AvailabilityCacheHit.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) resolve(ctx context.Context, date time.Time) ([]model.TimeSlot, error) {
	schedule, err := s.scheduleRepo.GetWorkSchedule(ctx, dateutil.Weekday(date))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSchedule
		}
		return nil, fmt.Errorf("failed to load work schedule: %w", err)
	}
	if !schedule.IsWorkingDay {
		return []model.TimeSlot{}, nil
	}

	templates, err := s.scheduleRepo.ListAvailableSlots(ctx, dateutil.Weekday(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load slot templates: %w", err)
	}

	// A full-day override wins over every template.
	_, err = s.scheduleRepo.GetUnavailableDay(ctx, date)
	if err == nil {
		return []model.TimeSlot{}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check unavailable day: %w", err)
	}

	frames, err := s.scheduleRepo.ListUnavailableTimeFrames(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load unavailable time frames: %w", err)
	}

	appointments, err := s.apptRepo.ListActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	booked := make(map[model.TimeOfDay]bool, len(appointments))
	for _, appt := range appointments {
		booked[appt.AppointmentTime] = true
	}

	// Templates arrive ordered by start then end; overlapping templates are
	// evaluated independently, not merged.
	slots := make([]model.TimeSlot, 0, len(templates))
	for _, tpl := range templates {
		if overlapsAny(tpl, frames) {
			continue
		}
		if booked[tpl.StartTime] {
			continue
		}
		slots = append(slots, model.TimeSlot{
			StartTime: tpl.StartTime,
			EndTime:   tpl.EndTime,
		})
	}
	return slots, nil
}

// overlapsAny reports whether the slot's [start, end) interval strictly
// intersects any frame. Touching intervals do not count; any partial overlap
// removes the whole slot, no splitting.
func overlapsAny(slot *model.AvailableSlot, frames []*model.UnavailableTimeFrame) bool {
	for _, frame := range frames {
		if slot.StartTime.Before(frame.EndTime) && frame.StartTime.Before(slot.EndTime) {
			return true
		}
	}
	return false
}
