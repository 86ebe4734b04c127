package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/email"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
	"github.com/praxisdesk/booking-api/internal/service/availability"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
	"github.com/praxisdesk/booking-api/pkg/logger"
	"github.com/praxisdesk/booking-api/pkg/token"
)

// Service is the booking arbiter: it enforces at most one confirmed
// appointment per slot per date and owns the cancellation flow.
type Service struct {
	apptRepo     repository.AppointmentRepository
	patientRepo  repository.PatientRepository
	resolver     *availability.Service
	cancelTokens *token.CancelTokenService
	emailSvc     email.Service
	log          *logger.Logger
}

func NewService(
	apptRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	resolver *availability.Service,
	cancelTokens *token.CancelTokenService,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		apptRepo:     apptRepo,
		patientRepo:  patientRepo,
		resolver:     resolver,
		cancelTokens: cancelTokens,
		emailSvc:     emailSvc,
		log:          log,
	}
}

// Book reserves one slot for one patient. The resolver pre-check gives the
// caller a precise conflict message; the store's uniqueness constraint is
// what actually prevents a double booking under concurrent load.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.BookAppointmentResponse, error) {
	date, apptTime, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, apperrors.Validation("invalid date or time", err)
	}

	visitTypeID, err := uuid.Parse(req.VisitTypeID)
	if err != nil {
		return nil, apperrors.Validation("invalid visit type", err)
	}
	consultTypeID, err := parseOptionalUUID(req.ConsultTypeID)
	if err != nil {
		return nil, apperrors.Validation("invalid consult type", err)
	}
	practiceTypeID, err := parseOptionalUUID(req.PracticeTypeID)
	if err != nil {
		return nil, apperrors.Validation("invalid practice type", err)
	}

	patient, err := s.patientRepo.FindOrCreate(ctx, req.PhoneNumber, req.FirstName, req.LastName)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("find or create patient: %w", err))
	}

	slots, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		if errors.Is(err, availability.ErrNoSchedule) {
			return nil, apperrors.NotFound("work schedule", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("resolve availability: %w", err))
	}
	if !slotOffered(slots, apptTime) {
		return nil, apperrors.Conflict("slot is not available for booking", nil)
	}

	appt := &model.Appointment{
		PatientID:       patient.ID,
		AppointmentDate: date,
		AppointmentTime: apptTime,
		Status:          model.AppointmentStatusConfirmed,
		VisitTypeID:     visitTypeID,
		ConsultTypeID:   consultTypeID,
		PracticeTypeID:  practiceTypeID,
	}

	if err := s.apptRepo.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.Conflict("slot already booked", err)
		}
		return nil, apperrors.Storage(fmt.Errorf("create appointment: %w", err))
	}
	s.resolver.Invalidate(date)

	cancelToken, err := s.cancelTokens.Issue(appt.ID, date)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("issue cancellation token: %w", err))
	}
	if err := s.apptRepo.SetCancellationToken(ctx, appt.ID, cancelToken); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("store cancellation token: %w", err))
	}
	appt.CancellationToken = &cancelToken

	if err := s.emailSvc.NotifyBooking(appt, patient); err != nil {
		s.log.Error(err, "booking notification failed", "appointment_id", appt.ID.String())
	}

	s.log.Info("appointment booked",
		"appointment_id", appt.ID.String(),
		"date", dateutil.Key(date),
		"time", string(apptTime),
	)

	return &model.BookAppointmentResponse{
		Appointment:       appt,
		CancellationToken: cancelToken,
	}, nil
}

// VerifyCancellation previews the appointment a cancellation token points at
// without changing anything.
func (s *Service) VerifyCancellation(ctx context.Context, tokenStr string) (*model.CancellationPreview, error) {
	apptID, err := s.cancelTokens.Verify(tokenStr)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	appt, err := s.apptRepo.Get(ctx, apptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Storage(fmt.Errorf("load appointment: %w", err))
	}

	return &model.CancellationPreview{
		AppointmentID:   appt.ID,
		AppointmentDate: appt.AppointmentDate,
		AppointmentTime: appt.AppointmentTime,
		Status:          appt.Status,
	}, nil
}

// Cancel verifies the token and cancels the bound appointment. Cancelling an
// already-cancelled appointment is treated as success, so patient retries
// are harmless.
func (s *Service) Cancel(ctx context.Context, tokenStr string) (*model.Appointment, error) {
	apptID, err := s.cancelTokens.Verify(tokenStr)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	appt, err := s.apptRepo.Get(ctx, apptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Storage(fmt.Errorf("load appointment: %w", err))
	}

	if appt.Status == model.AppointmentStatusCancelled {
		return appt, nil
	}

	if err := s.apptRepo.Cancel(ctx, appt.ID); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("cancel appointment: %w", err))
	}
	appt.Status = model.AppointmentStatusCancelled
	appt.CancellationToken = nil
	s.resolver.Invalidate(appt.AppointmentDate)

	if err := s.emailSvc.NotifyCancellation(appt); err != nil {
		s.log.Error(err, "cancellation notification failed", "appointment_id", appt.ID.String())
	}

	s.log.Info("appointment cancelled", "appointment_id", appt.ID.String())
	return appt, nil
}

// ListForDate is the staff view of a day, cancelled rows included.
func (s *Service) ListForDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	appointments, err := s.apptRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("list appointments: %w", err))
	}
	return appointments, nil
}

func parseSlot(dateStr, timeStr string) (time.Time, model.TimeOfDay, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, "", err
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return time.Time{}, "", fmt.Errorf("invalid time %q: %w", timeStr, err)
	}
	return date, model.TimeOfDay(timeStr), nil
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func slotOffered(slots []model.TimeSlot, t model.TimeOfDay) bool {
	for _, slot := range slots {
		if slot.StartTime == t {
			return true
		}
	}
	return false
}
