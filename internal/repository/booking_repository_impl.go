package repository

import (
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit(clause.Associations).Create(booking).Error
}

// bookingEditableColumns are the columns an edit may change. Status moves only
// through UpdateStatus.
var bookingEditableColumns = []string{"title", "description", "start_time", "end_time", "room_id", "updated_at"}

func (r *bookingRepository) Update(db *gorm.DB, booking *entity.Booking) error {
	return db.Model(booking).Select(bookingEditableColumns).Updates(booking).Error
}

func (r *bookingRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Booking{})
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Room").Preload("Therapist").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDWithParticipants(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Room").
		Preload("Therapist").
		Preload("Client.Guardians").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(db *gorm.DB) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Room").
		Preload("Therapist").
		Preload("Client").
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByTherapistID(db *gorm.DB, therapistID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Room").
		Preload("Therapist").
		Preload("Client").
		Where("therapist_id = ?", therapistID).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindFirstOverlapping runs in a savepoint so a failed probe leaves the
// enclosing transaction usable.
func (r *bookingRepository) FindFirstOverlapping(db *gorm.DB, axis entity.ResourceAxis, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*entity.Booking, error) {
	column := axis.Column()
	if column == "" {
		return nil, fmt.Errorf("unknown resource axis %q", axis)
	}

	var found *entity.Booking
	err := db.Transaction(func(sp *gorm.DB) error {
		var booking entity.Booking
		err := overlapQuery(sp, column, resourceID, start, end, excludeID).First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// overlapQuery selects active bookings on column intersecting [start, end).
// Touching endpoints do not overlap.
func overlapQuery(db *gorm.DB, column string, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) *gorm.DB {
	query := db.Where(column+" = ?", resourceID).
		Where("status IN ?", entity.ActiveBookingStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return query.Order("start_time ASC")
}

func (r *bookingRepository) FindByStatusStartingBetween(db *gorm.DB, status entity.BookingStatus, from, to time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Where("status = ? AND start_time >= ? AND start_time < ?", status, from, to).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountBlockingRoomDeletion counts active bookings plus any booking, cancelled
// included, that starts after now.
func (r *bookingRepository) CountBlockingRoomDeletion(db *gorm.DB, roomID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := db.Model(&entity.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ? OR start_time > ?", entity.ActiveBookingStatuses, now).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Booking{}).
		Where("therapist_id = ? AND status IN ?", therapistID, entity.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}
