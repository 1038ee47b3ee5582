package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateMedicalRecordRequest links the record to a booking when BookingID is
// set; SessionDate then defaults to the booking start.
type CreateMedicalRecordRequest struct {
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	BookingID   *uuid.UUID `json:"booking_id" validate:"omitempty"`
	SessionDate *time.Time `json:"session_date" validate:"omitempty"`
	Notes       string     `json:"notes" validate:"required"`
}

// Response DTOs

type MedicalRecordResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	TherapistID uuid.UUID  `json:"therapist_id"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	SessionDate time.Time  `json:"session_date"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
}
