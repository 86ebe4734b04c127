package email

import (
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/praxisdesk/booking-api/internal/config"
	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/pkg/circuitbreaker"
)

// Service notifies the practice inbox about booking activity. Delivery is
// best-effort; callers log failures and move on.
type Service interface {
	NotifyBooking(appointment *model.Appointment, patient *model.Patient) error
	NotifyCancellation(appointment *model.Appointment) error
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	to      string
	breaker *circuitbreaker.CircuitBreaker
}

// NewService returns a gomail-backed notifier, or a no-op one when email is
// disabled in config.
func NewService(cfg config.EmailConfig) Service {
	if !cfg.Enabled {
		return noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.From,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 3,
			Cooldown:    time.Minute,
		}),
	}
}

func (s *smtpService) NotifyBooking(appointment *model.Appointment, patient *model.Patient) error {
	subject := fmt.Sprintf("New appointment on %s at %s",
		dateutil.Key(appointment.AppointmentDate), appointment.AppointmentTime)
	body := fmt.Sprintf("Patient %s %s (%s) booked %s %s.",
		patient.FirstName, patient.LastName, patient.PhoneNumber,
		dateutil.Key(appointment.AppointmentDate), appointment.AppointmentTime)
	return s.send(subject, body)
}

func (s *smtpService) NotifyCancellation(appointment *model.Appointment) error {
	subject := fmt.Sprintf("Cancellation for %s at %s",
		dateutil.Key(appointment.AppointmentDate), appointment.AppointmentTime)
	body := fmt.Sprintf("The appointment on %s at %s was cancelled.",
		dateutil.Key(appointment.AppointmentDate), appointment.AppointmentTime)
	return s.send(subject, body)
}

func (s *smtpService) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	err := s.breaker.Execute(func() error {
		return s.dialer.DialAndSend(m)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyBooking(*model.Appointment, *model.Patient) error { return nil }
func (noopService) NotifyCancellation(*model.Appointment) error            { return nil }
