package repository

import (
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type therapistProfileRepository struct{}

func NewTherapistProfileRepository() domainRepo.TherapistProfileRepository {
	return &therapistProfileRepository{}
}

// Create inserts the profile together with its User through the association.
func (r *therapistProfileRepository) Create(db *gorm.DB, profile *entity.TherapistProfile) error {
	return db.Create(profile).Error
}

func (r *therapistProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error) {
	var profile entity.TherapistProfile
	err := db.Preload("User").
		Joins("JOIN users ON users.id = therapist_profiles.user_id").
		Where("therapist_profiles.user_id = ? AND users.role_id = ? AND users.is_active = ?", userID, entity.RoleIDTherapist, true).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *therapistProfileRepository) FindAll(db *gorm.DB) ([]entity.TherapistProfile, error) {
	var profiles []entity.TherapistProfile
	err := db.Preload("User").Order("license_number ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update saves the profile and the embedded user in one call.
func (r *therapistProfileRepository) Update(db *gorm.DB, profile *entity.TherapistProfile) error {
	if err := db.Omit("Role", "TherapistProfile").Save(&profile.User).Error; err != nil {
		return err
	}
	return db.Omit("User").Save(profile).Error
}
