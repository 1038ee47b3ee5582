package repository

import (
	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateBatch(db *gorm.DB, notifications []entity.Notification) error
	FindByGuardianID(db *gorm.DB, guardianID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	MarkAsRead(db *gorm.DB, id, guardianID uuid.UUID) (int64, error)
}
