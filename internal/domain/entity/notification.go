package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationBookingUpdated   NotificationType = "BOOKING_UPDATED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationBookingReminder  NotificationType = "BOOKING_REMINDER"
	NotificationGeneral          NotificationType = "GENERAL"
)

type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
)

// Priority returns the priority a notification of this type is sent with.
func (t NotificationType) Priority() NotificationPriority {
	switch t {
	case NotificationBookingCancelled, NotificationBookingReminder:
		return PriorityHigh
	}
	return PriorityNormal
}

// Notification is an outbox message addressed to one guardian.
type Notification struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GuardianID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"guardian_id"`
	BookingID   *uuid.UUID           `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	ClientID    *uuid.UUID           `gorm:"type:uuid" json:"client_id,omitempty"`
	TherapistID *uuid.UUID           `gorm:"type:uuid" json:"therapist_id,omitempty"`
	Type        NotificationType     `gorm:"type:varchar(30);not null;index" json:"type"`
	Priority    NotificationPriority `gorm:"type:varchar(10);not null" json:"priority"`
	Title       string               `gorm:"type:varchar(255);not null" json:"title"`
	Message     string               `gorm:"type:text;not null" json:"message"`
	IsRead      bool                 `gorm:"not null;default:false;index" json:"is_read"`
	Metadata    JSON                 `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time            `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
