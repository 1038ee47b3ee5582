package repository

import (
	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TherapistProfileRepository interface {
	Create(db *gorm.DB, profile *entity.TherapistProfile) error
	// FindByUserID returns nil when the user is missing, inactive or not a therapist.
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error)
	FindAll(db *gorm.DB) ([]entity.TherapistProfile, error)
	Update(db *gorm.DB, profile *entity.TherapistProfile) error
}
