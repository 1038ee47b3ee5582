package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog records who changed what; Metadata carries entity, entity_id,
// old_value and new_value.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows the audit trail. Empty fields match everything;
// Entity and EntityID are matched against the metadata keys.
type AuditLogFilter struct {
	Action   string
	Entity   string
	EntityID string
	UserID   *uuid.UUID
	Page     int
	Limit    int
}

// Offset is the row offset of Page, counting pages from 1.
func (f AuditLogFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionUserLogin         = "user.login"
	AuditActionUserLogout        = "user.logout"
	AuditActionAdminSeed         = "user.seed_admin"
	AuditActionBookingCreate     = "booking.create"
	AuditActionBookingUpdate     = "booking.update"
	AuditActionBookingStatus     = "booking.status"
	AuditActionBookingCancel     = "booking.cancel"
	AuditActionRoomCreate        = "room.create"
	AuditActionRoomUpdate        = "room.update"
	AuditActionRoomDelete        = "room.delete"
	AuditActionTherapistCreate   = "therapist.create"
	AuditActionTherapistUpdate   = "therapist.update"
	AuditActionTherapistDelete   = "therapist.delete"
	AuditActionClientCreate      = "client.create"
	AuditActionGuardianCreate    = "guardian.create"
	AuditActionRelationshipLink  = "relationship.link"
	AuditActionRelationshipEnd   = "relationship.end"
	AuditActionMedicalRecordSave = "medical_record.create"
)
