package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses are the statuses that hold a resource.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// ResourceAxis names one of the exclusivity dimensions of a booking.
type ResourceAxis string

const (
	AxisRoom      ResourceAxis = "room"
	AxisTherapist ResourceAxis = "therapist"
	AxisClient    ResourceAxis = "client"
)

// Column returns the bookings column that identifies the resource.
func (a ResourceAxis) Column() string {
	switch a {
	case AxisRoom:
		return "room_id"
	case AxisTherapist:
		return "therapist_id"
	case AxisClient:
		return "client_id"
	}
	return ""
}

// Booking is a time-boxed reservation of a room by a therapist, optionally
// for a client. ClientID is nil for group sessions.
type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	StartTime   time.Time     `gorm:"type:timestamptz;not null;index" json:"start_time"`
	EndTime     time.Time     `gorm:"type:timestamptz;not null" json:"end_time"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RoomID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"room_id"`
	TherapistID uuid.UUID     `gorm:"type:uuid;not null;index" json:"therapist_id"`
	ClientID    *uuid.UUID    `gorm:"type:uuid;index" json:"client_id,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Room      *Room   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Therapist *User   `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
	Client    *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending checks if booking is in pending status
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsActive reports whether the booking still holds its room, therapist and client.
func (b *Booking) IsActive() bool {
	return b.IsPending() || b.IsConfirmed()
}

// HasClient is false for group sessions.
func (b *Booking) HasClient() bool {
	return b.ClientID != nil && *b.ClientID != uuid.Nil
}

func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// CanTransitionTo allows PENDING -> CONFIRMED and PENDING/CONFIRMED -> CANCELLED.
// Setting the current status again is a no-op and allowed.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	if next == b.Status {
		return true
	}
	switch b.Status {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}
	return false
}
