package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Room is an exclusive physical resource. Capacity is informational only.
type Room struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Capacity    int        `gorm:"not null;default:1" json:"capacity"`
	Resources   StringList `gorm:"type:jsonb" json:"resources"`
	OpeningTime *string    `gorm:"type:varchar(5)" json:"opening_time,omitempty"`
	ClosingTime *string    `gorm:"type:varchar(5)" json:"closing_time,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Bookings []Booking `gorm:"foreignKey:RoomID" json:"bookings,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}

// HasBusinessHours reports whether both opening and closing times are set.
func (r *Room) HasBusinessHours() bool {
	return r.OpeningTime != nil && *r.OpeningTime != "" && r.ClosingTime != nil && *r.ClosingTime != ""
}

// WithinBusinessHours compares zero-padded HH:MM strings lexically.
func (r *Room) WithinBusinessHours(startHHMM, endHHMM string) bool {
	if !r.HasBusinessHours() {
		return true
	}
	return startHHMM >= *r.OpeningTime && endHHMM <= *r.ClosingTime
}

// StringList stores a list of tags as a jsonb array
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal StringList value: %v", value)
	}
	var list []string
	if err := json.Unmarshal(bytes, &list); err != nil {
		return err
	}
	*s = list
	return nil
}
