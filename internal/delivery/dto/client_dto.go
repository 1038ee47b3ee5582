package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateClientRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=2"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes" validate:"omitempty"`
}

type CreateGuardianRequest struct {
	FullName string     `json:"full_name" validate:"required,min=2"`
	Email    string     `json:"email" validate:"omitempty,email"`
	Phone    string     `json:"phone" validate:"omitempty,min=6,max=20"`
	UserID   *uuid.UUID `json:"user_id" validate:"omitempty"`
}

type LinkTherapistRequest struct {
	TherapistID uuid.UUID `json:"therapist_id" validate:"required"`
	IsPrimary   bool      `json:"is_primary"`
	StartDate   *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type GuardianResponse struct {
	ID       uuid.UUID  `json:"id"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

type RelationshipResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	IsPrimary   bool      `json:"is_primary"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date,omitempty"`
	Active      bool      `json:"active"`
}

type ClientResponse struct {
	ID            uuid.UUID              `json:"id"`
	FullName      string                 `json:"full_name"`
	DateOfBirth   *string                `json:"date_of_birth,omitempty"`
	Notes         *string                `json:"notes,omitempty"`
	Guardians     []GuardianResponse     `json:"guardians"`
	Relationships []RelationshipResponse `json:"relationships,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int              `json:"total"`
}
