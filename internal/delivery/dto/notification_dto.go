package dto

import (
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type NotificationResponse struct {
	ID          uuid.UUID   `json:"id"`
	Type        string      `json:"type"`
	Priority    string      `json:"priority"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	IsRead      bool        `json:"is_read"`
	BookingID   *uuid.UUID  `json:"booking_id,omitempty"`
	ClientID    *uuid.UUID  `json:"client_id,omitempty"`
	TherapistID *uuid.UUID  `json:"therapist_id,omitempty"`
	Metadata    entity.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	Unread        int                    `json:"unread"`
}

type ReminderSweepResponse struct {
	Reminded int `json:"reminded"`
}
