package entity

import (
	"time"

	"github.com/google/uuid"
)

// Client is the subject of a session
type Client struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName    string     `gorm:"type:varchar(255);not null" json:"full_name"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Notes       *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Guardians     []Guardian        `gorm:"many2many:client_guardians;" json:"guardians,omitempty"`
	Relationships []ClientTherapist `gorm:"foreignKey:ClientID" json:"relationships,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// Guardian receives notifications about a client's sessions. UserID is set
// when the guardian has a login.
type Guardian struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	FullName  string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email     string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone     string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Clients []Client `gorm:"many2many:client_guardians;" json:"clients,omitempty"`
}

func (Guardian) TableName() string {
	return "guardians"
}

// ClientTherapist authorizes a therapist to be booked with a client while
// EndDate is nil.
type ClientTherapist struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	TherapistID uuid.UUID  `gorm:"type:uuid;not null;index" json:"therapist_id"`
	IsPrimary   bool       `gorm:"not null;default:false" json:"is_primary"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Client    *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Therapist *User   `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
}

func (ClientTherapist) TableName() string {
	return "client_therapists"
}

func (ct *ClientTherapist) IsActive() bool {
	return ct.EndDate == nil
}
