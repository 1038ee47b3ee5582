package repository

import (
	"errors"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clientRepository struct{}

func NewClientRepository() domainRepo.ClientRepository {
	return &clientRepository{}
}

func (r *clientRepository) Create(db *gorm.DB, client *entity.Client) error {
	return db.Create(client).Error
}

func (r *clientRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := db.Preload("Guardians").Preload("Relationships").Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindAll(db *gorm.DB) ([]entity.Client, error) {
	var clients []entity.Client
	err := db.Preload("Guardians").Order("full_name ASC").Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) AddGuardian(db *gorm.DB, client *entity.Client, guardian *entity.Guardian) error {
	return db.Model(client).Association("Guardians").Append(guardian)
}

type guardianRepository struct{}

func NewGuardianRepository() domainRepo.GuardianRepository {
	return &guardianRepository{}
}

func (r *guardianRepository) Create(db *gorm.DB, guardian *entity.Guardian) error {
	return db.Create(guardian).Error
}

func (r *guardianRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Guardian, error) {
	var guardian entity.Guardian
	err := db.Where("id = ?", id).First(&guardian).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &guardian, nil
}

func (r *guardianRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Guardian, error) {
	var guardian entity.Guardian
	err := db.Where("user_id = ?", userID).First(&guardian).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &guardian, nil
}

type clientTherapistRepository struct{}

func NewClientTherapistRepository() domainRepo.ClientTherapistRepository {
	return &clientTherapistRepository{}
}

func (r *clientTherapistRepository) Create(db *gorm.DB, relationship *entity.ClientTherapist) error {
	return db.Create(relationship).Error
}

func (r *clientTherapistRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClientTherapist, error) {
	var relationship entity.ClientTherapist
	err := db.Where("id = ?", id).First(&relationship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &relationship, nil
}

func (r *clientTherapistRepository) FindActive(db *gorm.DB, clientID, therapistID uuid.UUID) (*entity.ClientTherapist, error) {
	var relationship entity.ClientTherapist
	err := db.Where("client_id = ? AND therapist_id = ? AND end_date IS NULL", clientID, therapistID).
		First(&relationship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &relationship, nil
}

// End closes an open relationship; already ended rows are left untouched.
func (r *clientTherapistRepository) End(db *gorm.DB, id uuid.UUID, endDate time.Time) (int64, error) {
	result := db.Model(&entity.ClientTherapist{}).
		Where("id = ? AND end_date IS NULL", id).
		Update("end_date", endDate)
	return result.RowsAffected, result.Error
}

func (r *clientTherapistRepository) CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.ClientTherapist{}).
		Where("therapist_id = ? AND end_date IS NULL", therapistID).
		Count(&count).Error
	return count, err
}
