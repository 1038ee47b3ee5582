package repository

import (
	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalRecordRepository interface {
	Create(db *gorm.DB, record *entity.MedicalRecord) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error)
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.MedicalRecord, error)
	// ClearBookingReference detaches any record from the booking.
	ClearBookingReference(db *gorm.DB, bookingID uuid.UUID) (int64, error)
	CountByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error)
}
