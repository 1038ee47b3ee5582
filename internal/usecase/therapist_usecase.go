package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrTherapistEmailExists   = errors.New("email already exists")
	ErrTherapistLicenseExists = errors.New("license number already exists")
	ErrTherapistInUse         = errors.New("therapist has active bookings, medical records or client relationships")
)

type TherapistUsecase interface {
	CreateTherapist(ctx context.Context, actor entity.Actor, req *dto.CreateTherapistRequest) (*dto.TherapistResponse, error)
	GetTherapist(ctx context.Context, therapistID uuid.UUID) (*dto.TherapistResponse, error)
	GetAllTherapists(ctx context.Context) (*dto.TherapistListResponse, error)
	UpdateTherapist(ctx context.Context, actor entity.Actor, therapistID uuid.UUID, req *dto.UpdateTherapistRequest) (*dto.TherapistResponse, error)
	DeleteTherapist(ctx context.Context, actor entity.Actor, therapistID uuid.UUID) error
}

type therapistUsecase struct {
	transactor           repository.Transactor
	log                  *logrus.Logger
	userRepo             repository.UserRepository
	therapistProfileRepo repository.TherapistProfileRepository
	bookingRepo          repository.BookingRepository
	medicalRecordRepo    repository.MedicalRecordRepository
	relationshipRepo     repository.ClientTherapistRepository
	auditService         service.AuditService
}

func NewTherapistUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	therapistProfileRepo repository.TherapistProfileRepository,
	bookingRepo repository.BookingRepository,
	medicalRecordRepo repository.MedicalRecordRepository,
	relationshipRepo repository.ClientTherapistRepository,
	auditService service.AuditService,
) TherapistUsecase {
	return &therapistUsecase{
		transactor:           transactor,
		log:                  log,
		userRepo:             userRepo,
		therapistProfileRepo: therapistProfileRepo,
		bookingRepo:          bookingRepo,
		medicalRecordRepo:    medicalRecordRepo,
		relationshipRepo:     relationshipRepo,
		auditService:         auditService,
	}
}

func (u *therapistUsecase) CreateTherapist(ctx context.Context, actor entity.Actor, req *dto.CreateTherapistRequest) (*dto.TherapistResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	active := true
	profile := &entity.TherapistProfile{
		LicenseNumber:  req.LicenseNumber,
		Specialization: req.Specialization,
		Biography:      req.Biography,
		User: entity.User{
			Email:    req.Email,
			Password: string(hashedPassword),
			FullName: req.FullName,
			RoleID:   entity.RoleIDTherapist,
			IsActive: &active,
		},
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.therapistProfileRepo.Create(tx, profile); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionTherapistCreate, "therapist_profile", profile.UserID.String(), converter.TherapistProfileToResponse(profile)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to create therapist: %+v", err)
		if isDuplicateKeyError(err, "email") {
			return nil, ErrTherapistEmailExists
		}
		if isDuplicateKeyError(err, "license_number") {
			return nil, ErrTherapistLicenseExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return converter.TherapistProfileToResponse(profile), nil
}

func (u *therapistUsecase) GetTherapist(ctx context.Context, therapistID uuid.UUID) (*dto.TherapistResponse, error) {
	profile, err := u.therapistProfileRepo.FindByUserID(u.transactor.Conn(ctx), therapistID)
	if err != nil {
		u.log.Warnf("Failed to find therapist profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrTherapistNotFound
	}

	return converter.TherapistProfileToResponse(profile), nil
}

func (u *therapistUsecase) GetAllTherapists(ctx context.Context) (*dto.TherapistListResponse, error) {
	profiles, err := u.therapistProfileRepo.FindAll(u.transactor.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all therapist profiles: %+v", err)
		return nil, err
	}

	therapists := converter.TherapistProfilesToResponses(profiles)

	return &dto.TherapistListResponse{
		Therapists: therapists,
		Total:      len(therapists),
	}, nil
}

func (u *therapistUsecase) UpdateTherapist(ctx context.Context, actor entity.Actor, therapistID uuid.UUID, req *dto.UpdateTherapistRequest) (*dto.TherapistResponse, error) {
	var profile *entity.TherapistProfile
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = u.therapistProfileRepo.FindByUserID(tx, therapistID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrTherapistNotFound
		}

		oldValue := converter.TherapistProfileToResponse(profile)

		if req.Email != "" {
			profile.User.Email = req.Email
		}
		if req.Password != "" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			profile.User.Password = string(hashedPassword)
		}
		if req.FullName != "" {
			profile.User.FullName = req.FullName
		}
		if req.IsActive != nil {
			profile.User.IsActive = req.IsActive
		}
		if req.LicenseNumber != "" {
			profile.LicenseNumber = req.LicenseNumber
		}
		if req.Specialization != "" {
			profile.Specialization = req.Specialization
		}
		if req.Biography != "" {
			profile.Biography = req.Biography
		}

		if err := u.therapistProfileRepo.Update(tx, profile); err != nil {
			return err
		}

		newValue := converter.TherapistProfileToResponse(profile)
		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionTherapistUpdate, "therapist_profile", therapistID.String(), oldValue, newValue); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTherapistNotFound):
			return nil, err
		case isDuplicateKeyError(err, "email"):
			return nil, ErrTherapistEmailExists
		case isDuplicateKeyError(err, "license_number"):
			return nil, ErrTherapistLicenseExists
		}
		u.log.Warnf("Failed to update therapist profile: %+v", err)
		return nil, err
	}

	return converter.TherapistProfileToResponse(profile), nil
}

// DeleteTherapist refuses while the therapist holds active bookings, medical
// records or open client relationships.
func (u *therapistUsecase) DeleteTherapist(ctx context.Context, actor entity.Actor, therapistID uuid.UUID) error {
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		profile, err := u.therapistProfileRepo.FindByUserID(tx, therapistID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrTherapistNotFound
		}
		oldValue := converter.TherapistProfileToResponse(profile)

		bookings, err := u.bookingRepo.CountActiveByTherapist(tx, therapistID)
		if err != nil {
			return err
		}
		records, err := u.medicalRecordRepo.CountByTherapist(tx, therapistID)
		if err != nil {
			return err
		}
		relationships, err := u.relationshipRepo.CountActiveByTherapist(tx, therapistID)
		if err != nil {
			return err
		}
		if bookings > 0 || records > 0 || relationships > 0 {
			u.log.WithFields(logrus.Fields{
				"therapist_id":  therapistID,
				"bookings":      bookings,
				"records":       records,
				"relationships": relationships,
			}).Info("Therapist deletion blocked")
			return ErrTherapistInUse
		}

		affectedRows, err := u.userRepo.Delete(tx, therapistID)
		if err != nil {
			return err
		}
		if affectedRows == 0 {
			return ErrTherapistNotFound
		}

		if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionTherapistDelete, "therapist_profile", therapistID.String(), oldValue); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTherapistNotFound) || errors.Is(err, ErrTherapistInUse) {
			return err
		}
		// Past bookings and ended relationships still reference the user.
		if isForeignKeyError(err, "therapist_id") {
			return ErrTherapistInUse
		}
		u.log.Warnf("Failed delete therapist: %+v", err)
		return err
	}

	return nil
}
