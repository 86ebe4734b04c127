package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment occupies exactly one (date, time) slot. Rows are never hard
// deleted; cancellation flips the status and clears the stored token.
type Appointment struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	PatientID         uuid.UUID         `db:"patient_id" json:"patient_id"`
	AppointmentDate   time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime   TimeOfDay         `db:"appointment_time" json:"appointment_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	VisitTypeID       uuid.UUID         `db:"visit_type_id" json:"visit_type_id"`
	ConsultTypeID     *uuid.UUID        `db:"consult_type_id" json:"consult_type_id,omitempty"`
	PracticeTypeID    *uuid.UUID        `db:"practice_type_id" json:"practice_type_id,omitempty"`
	CancellationToken *string           `db:"cancellation_token" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	FirstName      string `json:"first_name" binding:"required,max=100"`
	LastName       string `json:"last_name" binding:"required,max=100"`
	PhoneNumber    string `json:"phone_number" binding:"required,min=6,max=20"`
	Date           string `json:"date" binding:"required,dateonly"`
	Time           string `json:"time" binding:"required,hhmm"`
	VisitTypeID    string `json:"visit_type_id" binding:"required,uuid"`
	ConsultTypeID  string `json:"consult_type_id" binding:"omitempty,uuid"`
	PracticeTypeID string `json:"practice_type_id" binding:"omitempty,uuid"`
}

type BookAppointmentResponse struct {
	Appointment       *Appointment `json:"appointment"`
	CancellationToken string       `json:"cancellation_token"`
}

type CancelAppointmentRequest struct {
	Token string `json:"token" binding:"required"`
}

// CancellationPreview is returned by the verify endpoint before the patient
// commits to cancelling.
type CancellationPreview struct {
	AppointmentID   uuid.UUID         `json:"appointment_id"`
	AppointmentDate time.Time         `json:"appointment_date"`
	AppointmentTime TimeOfDay         `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
}
