package service

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationEvent is handed from the booking lifecycle to the notification
// queue after a mutation commits.
type NotificationEvent struct {
	Type      entity.NotificationType `json:"type"`
	BookingID uuid.UUID               `json:"booking_id"`
	// Snapshot is set for cancellations, where the booking row is gone by the
	// time the event is handled.
	Snapshot *BookingSnapshot `json:"snapshot,omitempty"`
}

// NotificationPublisher enqueues events. Implementations must not block on
// delivery.
type NotificationPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

// NotificationHandler consumes queued events.
type NotificationHandler interface {
	Handle(ctx context.Context, event NotificationEvent) error
}

// BookingSnapshot is the data a notification needs, detached from storage.
type BookingSnapshot struct {
	BookingID     uuid.UUID   `json:"booking_id"`
	Title         string      `json:"title"`
	StartTime     time.Time   `json:"start_time"`
	EndTime       time.Time   `json:"end_time"`
	RoomName      string      `json:"room_name"`
	TherapistID   uuid.UUID   `json:"therapist_id"`
	TherapistName string      `json:"therapist_name"`
	ClientID      *uuid.UUID  `json:"client_id,omitempty"`
	ClientName    string      `json:"client_name"`
	GuardianIDs   []uuid.UUID `json:"guardian_ids"`
}

// NewBookingSnapshot expects Room, Therapist and Client.Guardians to be loaded.
func NewBookingSnapshot(booking *entity.Booking) *BookingSnapshot {
	snapshot := &BookingSnapshot{
		BookingID:   booking.ID,
		Title:       booking.Title,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		TherapistID: booking.TherapistID,
		ClientID:    booking.ClientID,
	}
	if booking.Room != nil {
		snapshot.RoomName = booking.Room.Name
	}
	if booking.Therapist != nil {
		snapshot.TherapistName = booking.Therapist.FullName
	}
	if booking.Client != nil {
		snapshot.ClientName = booking.Client.FullName
		for _, guardian := range booking.Client.Guardians {
			snapshot.GuardianIDs = append(snapshot.GuardianIDs, guardian.ID)
		}
	}
	return snapshot
}
