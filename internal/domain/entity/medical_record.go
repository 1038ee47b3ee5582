package entity

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord documents a session. BookingID is cleared, not cascaded,
// when the booking is cancelled.
type MedicalRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	TherapistID uuid.UUID  `gorm:"type:uuid;not null;index" json:"therapist_id"`
	BookingID   *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"booking_id,omitempty"`
	SessionDate time.Time  `gorm:"type:timestamptz;not null" json:"session_date"`
	Notes       string     `gorm:"type:text;not null" json:"notes"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Client    *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Therapist *User   `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}
