package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/booking-api/internal/config"
	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/email"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
	"github.com/praxisdesk/booking-api/internal/service/availability"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
	"github.com/praxisdesk/booking-api/pkg/logger"
	"github.com/praxisdesk/booking-api/pkg/token"
)

var nextMonday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

// memAppointmentRepo arbitrates bookings the way the postgres unique index
// does: one winner per (date, time) among non-cancelled rows.
type memAppointmentRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Appointment
	slots map[string]uuid.UUID
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{
		byID:  make(map[uuid.UUID]*model.Appointment),
		slots: make(map[string]uuid.UUID),
	}
}

func slotKey(date time.Time, t model.TimeOfDay) string {
	return dateutil.Key(date) + " " + string(t)
}

func (m *memAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey(appt.AppointmentDate, appt.AppointmentTime)
	if _, taken := m.slots[key]; taken {
		return repository.ErrSlotTaken
	}

	appt.ID = uuid.New()
	copied := *appt
	m.byID[appt.ID] = &copied
	m.slots[key] = appt.ID
	return nil
}

func (m *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if appt, ok := m.byID[id]; ok {
		copied := *appt
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memAppointmentRepo) ListActiveByDate(_ context.Context, date time.Time) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range m.byID {
		if dateutil.Key(appt.AppointmentDate) == dateutil.Key(date) && appt.Status != model.AppointmentStatusCancelled {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) ListByDate(_ context.Context, date time.Time) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range m.byID {
		if dateutil.Key(appt.AppointmentDate) == dateutil.Key(date) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) SetCancellationToken(_ context.Context, id uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	appt.CancellationToken = &token
	return nil
}

func (m *memAppointmentRepo) Cancel(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	appt.Status = model.AppointmentStatusCancelled
	appt.CancellationToken = nil
	delete(m.slots, slotKey(appt.AppointmentDate, appt.AppointmentTime))
	return nil
}

type memPatientRepo struct {
	mu      sync.Mutex
	byPhone map[string]*model.Patient
}

func newMemPatientRepo() *memPatientRepo {
	return &memPatientRepo{byPhone: make(map[string]*model.Patient)}
}

func (m *memPatientRepo) FindOrCreate(_ context.Context, phone, first, last string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byPhone[phone]; ok {
		return p, nil
	}
	p := &model.Patient{ID: uuid.New(), FirstName: first, LastName: last, PhoneNumber: phone}
	m.byPhone[phone] = p
	return p, nil
}

func (m *memPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byPhone {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memScheduleRepo struct {
	schedules map[int]*model.WorkSchedule
	slots     map[int][]*model.AvailableSlot
}

func (m *memScheduleRepo) GetWorkSchedule(_ context.Context, weekday int) (*model.WorkSchedule, error) {
	if s, ok := m.schedules[weekday]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memScheduleRepo) UpsertWorkSchedule(_ context.Context, _ *model.WorkSchedule) error {
	return nil
}

func (m *memScheduleRepo) ListWorkSchedules(_ context.Context) ([]*model.WorkSchedule, error) {
	return nil, nil
}

func (m *memScheduleRepo) ListAvailableSlots(_ context.Context, weekday int) ([]*model.AvailableSlot, error) {
	return m.slots[weekday], nil
}

func (m *memScheduleRepo) CreateAvailableSlot(_ context.Context, _ *model.AvailableSlot) error {
	return nil
}
func (m *memScheduleRepo) DeleteAvailableSlot(_ context.Context, _ uuid.UUID) error { return nil }
func (m *memScheduleRepo) GetUnavailableDay(_ context.Context, _ time.Time) (*model.UnavailableDay, error) {
	return nil, repository.ErrNotFound
}
func (m *memScheduleRepo) CreateUnavailableDay(_ context.Context, _ *model.UnavailableDay) error {
	return nil
}
func (m *memScheduleRepo) DeleteUnavailableDay(_ context.Context, _ uuid.UUID) error { return nil }
func (m *memScheduleRepo) ListUnavailableTimeFrames(_ context.Context, _ time.Time) ([]*model.UnavailableTimeFrame, error) {
	return nil, nil
}
func (m *memScheduleRepo) CreateUnavailableTimeFrame(_ context.Context, _ *model.UnavailableTimeFrame) error {
	return nil
}
func (m *memScheduleRepo) DeleteUnavailableTimeFrame(_ context.Context, _ uuid.UUID) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *memAppointmentRepo) {
	t.Helper()

	scheduleID := uuid.New()
	scheduleRepo := &memScheduleRepo{
		schedules: map[int]*model.WorkSchedule{
			1: {ID: scheduleID, Weekday: 1, IsWorkingDay: true},
		},
		slots: map[int][]*model.AvailableSlot{
			1: {
				{ID: uuid.New(), WorkScheduleID: scheduleID, StartTime: "09:00", EndTime: "09:30", IsAvailable: true},
				{ID: uuid.New(), WorkScheduleID: scheduleID, StartTime: "10:00", EndTime: "10:30", IsAvailable: true},
			},
		},
	}

	apptRepo := newMemAppointmentRepo()
	resolver := availability.NewService(scheduleRepo, apptRepo)

	cancelTokens, err := token.NewCancelTokenService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	svc := NewService(
		apptRepo,
		newMemPatientRepo(),
		resolver,
		cancelTokens,
		email.NewService(config.EmailConfig{}),
		logger.New(nil),
	)
	return svc, apptRepo
}

func bookReq(timeStr string) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		FirstName:   "Ana",
		LastName:    "Petre",
		PhoneNumber: "+40722000111",
		Date:        dateutil.Key(nextMonday),
		Time:        timeStr,
		VisitTypeID: uuid.New().String(),
	}
}

func appCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestBookSuccess(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Book(context.Background(), bookReq("09:00"))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, resp.Appointment.Status)
	assert.Equal(t, model.TimeOfDay("09:00"), resp.Appointment.AppointmentTime)
	assert.NotEmpty(t, resp.CancellationToken)
}

func TestBookSameSlotTwiceConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Book(context.Background(), bookReq("09:00"))
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), bookReq("09:00"))
	assert.Equal(t, apperrors.ErrConflict, appCode(t, err))
}

func TestBookUnknownTimeConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Book(context.Background(), bookReq("11:00"))
	assert.Equal(t, apperrors.ErrConflict, appCode(t, err))
}

func TestBookInvalidTimeIsValidationError(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Book(context.Background(), bookReq("9am"))
	assert.Equal(t, apperrors.ErrValidation, appCode(t, err))
}

func TestBookNoScheduleForWeekday(t *testing.T) {
	svc, _ := newTestService(t)

	req := bookReq("09:00")
	req.Date = dateutil.Key(nextMonday.AddDate(0, 0, 1)) // Tuesday has no schedule
	_, err := svc.Book(context.Background(), req)
	assert.Equal(t, apperrors.ErrNotFound, appCode(t, err))
}

func TestBookConcurrentSameSlotExactlyOneWins(t *testing.T) {
	svc, _ := newTestService(t)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), bookReq("10:00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, apperrors.ErrConflict, appCode(t, err))
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCancelFlow(t *testing.T) {
	svc, apptRepo := newTestService(t)

	resp, err := svc.Book(context.Background(), bookReq("09:00"))
	require.NoError(t, err)

	preview, err := svc.VerifyCancellation(context.Background(), resp.CancellationToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Appointment.ID, preview.AppointmentID)
	assert.Equal(t, model.AppointmentStatusConfirmed, preview.Status)

	cancelled, err := svc.Cancel(context.Background(), resp.CancellationToken)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	stored, err := apptRepo.Get(context.Background(), resp.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)
	assert.Nil(t, stored.CancellationToken)

	// Cancelling again is idempotent success.
	_, err = svc.Cancel(context.Background(), resp.CancellationToken)
	assert.NoError(t, err)

	// The slot is bookable again.
	_, err = svc.Book(context.Background(), bookReq("09:00"))
	assert.NoError(t, err)
}

func TestCancelWithGarbageTokenIsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(context.Background(), "not-a-token")
	assert.Equal(t, apperrors.ErrUnauthorized, appCode(t, err))

	_, err = svc.VerifyCancellation(context.Background(), "")
	assert.Equal(t, apperrors.ErrUnauthorized, appCode(t, err))
}

func TestFindOrCreatePatientIdempotent(t *testing.T) {
	repo := newMemPatientRepo()

	first, err := repo.FindOrCreate(context.Background(), "+40722000111", "Ana", "Petre")
	require.NoError(t, err)
	second, err := repo.FindOrCreate(context.Background(), "+40722000111", "Ana", "Petre")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
