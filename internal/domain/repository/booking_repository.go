package repository

import (
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	Update(db *gorm.DB, booking *entity.Booking) error
	// UpdateStatus only changes rows whose current status is in from; the
	// returned count is 0 when the booking moved concurrently.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	// FindByIDWithParticipants loads Room, Therapist and Client.Guardians.
	FindByIDWithParticipants(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindAll(db *gorm.DB) ([]entity.Booking, error)
	FindByTherapistID(db *gorm.DB, therapistID uuid.UUID) ([]entity.Booking, error)
	// FindFirstOverlapping returns the first PENDING/CONFIRMED booking on the
	// axis whose interval overlaps [start, end), or nil.
	FindFirstOverlapping(db *gorm.DB, axis entity.ResourceAxis, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*entity.Booking, error)
	FindByStatusStartingBetween(db *gorm.DB, status entity.BookingStatus, from, to time.Time) ([]entity.Booking, error)
	CountBlockingRoomDeletion(db *gorm.DB, roomID uuid.UUID, now time.Time) (int64, error)
	CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error)
}
