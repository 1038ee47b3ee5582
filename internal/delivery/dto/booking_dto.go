package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateBookingRequest carries times as strings so an unparsable instant is
// reported as a booking rule failure rather than a malformed body. Status is
// accepted but ignored: new bookings are always PENDING.
type CreateBookingRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty"`
	StartTime   string     `json:"start_time" validate:"required"`
	EndTime     string     `json:"end_time" validate:"required"`
	RoomID      uuid.UUID  `json:"room_id" validate:"required"`
	TherapistID *uuid.UUID `json:"therapist_id" validate:"omitempty"`
	ClientID    *uuid.UUID `json:"client_id" validate:"omitempty"`
	Status      string     `json:"status" validate:"omitempty"`
}

// UpdateBookingRequest fields left nil keep their stored value.
type UpdateBookingRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty"`
	StartTime   *string    `json:"start_time" validate:"omitempty"`
	EndTime     *string    `json:"end_time" validate:"omitempty"`
	RoomID      *uuid.UUID `json:"room_id" validate:"omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED"`
}

// Response DTOs

type BookingRoomSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BookingPersonSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

type BookingResponse struct {
	ID          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description *string               `json:"description,omitempty"`
	StartTime   time.Time             `json:"start_time"`
	EndTime     time.Time             `json:"end_time"`
	Status      string                `json:"status"`
	RoomID      uuid.UUID             `json:"room_id"`
	TherapistID uuid.UUID             `json:"therapist_id"`
	ClientID    *uuid.UUID            `json:"client_id,omitempty"`
	Room        *BookingRoomSummary   `json:"room,omitempty"`
	Therapist   *BookingPersonSummary `json:"therapist,omitempty"`
	Client      *BookingPersonSummary `json:"client,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
