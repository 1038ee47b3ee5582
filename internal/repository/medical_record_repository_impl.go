package repository

import (
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type medicalRecordRepository struct{}

func NewMedicalRecordRepository() domainRepo.MedicalRecordRepository {
	return &medicalRecordRepository{}
}

func (r *medicalRecordRepository) Create(db *gorm.DB, record *entity.MedicalRecord) error {
	return db.Omit("Client", "Therapist").Create(record).Error
}

func (r *medicalRecordRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error) {
	var record entity.MedicalRecord
	err := db.Preload("Client").Preload("Therapist").Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *medicalRecordRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.MedicalRecord, error) {
	var record entity.MedicalRecord
	err := db.Where("booking_id = ?", bookingID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *medicalRecordRepository) ClearBookingReference(db *gorm.DB, bookingID uuid.UUID) (int64, error) {
	result := db.Model(&entity.MedicalRecord{}).
		Where("booking_id = ?", bookingID).
		Update("booking_id", nil)
	return result.RowsAffected, result.Error
}

func (r *medicalRecordRepository) CountByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.MedicalRecord{}).Where("therapist_id = ?", therapistID).Count(&count).Error
	return count, err
}
