package repository

import (
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(db *gorm.DB, client *entity.Client) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Client, error)
	FindAll(db *gorm.DB) ([]entity.Client, error)
	AddGuardian(db *gorm.DB, client *entity.Client, guardian *entity.Guardian) error
}

type GuardianRepository interface {
	Create(db *gorm.DB, guardian *entity.Guardian) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Guardian, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Guardian, error)
}

type ClientTherapistRepository interface {
	Create(db *gorm.DB, relationship *entity.ClientTherapist) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClientTherapist, error)
	// FindActive returns the open-ended relationship between the pair, or nil.
	FindActive(db *gorm.DB, clientID, therapistID uuid.UUID) (*entity.ClientTherapist, error)
	End(db *gorm.DB, id uuid.UUID, endDate time.Time) (int64, error)
	CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error)
}
