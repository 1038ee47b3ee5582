package dto

import (
	"clinic-booking/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// AuditLogQuery is bound from the query string of the audit log listing.
type AuditLogQuery struct {
	Action   string     `validate:"omitempty,max=100"`
	Entity   string     `validate:"omitempty,max=50"`
	EntityID string     `validate:"omitempty,max=64"`
	UserID   *uuid.UUID `validate:"omitempty"`
	Page     int        `validate:"gte=0"`
	Limit    int        `validate:"gte=0,lte=100"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64         `json:"id"`
	User      *UserResponse `json:"user,omitempty"`
	Action    string        `json:"action"`
	Metadata  entity.JSON   `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// TotalPages is zero for an empty result.
func (r *AuditLogListResponse) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return int((r.Total + int64(r.Limit) - 1) / int64(r.Limit))
}
