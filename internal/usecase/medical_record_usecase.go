package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrMedicalRecordNotFound  = errors.New("medical record not found")
	ErrMedicalRecordExists    = errors.New("booking already has a medical record")
	ErrMedicalRecordForbidden = errors.New("you are not allowed to access this medical record")
	ErrRecordClientMismatch   = errors.New("booking belongs to a different client")
)

type MedicalRecordUsecase interface {
	CreateMedicalRecord(ctx context.Context, actor entity.Actor, req *dto.CreateMedicalRecordRequest) (*dto.MedicalRecordResponse, error)
	GetMedicalRecord(ctx context.Context, actor entity.Actor, recordID uuid.UUID) (*dto.MedicalRecordResponse, error)
}

type medicalRecordUsecase struct {
	transactor        repository.Transactor
	log               *logrus.Logger
	medicalRecordRepo repository.MedicalRecordRepository
	bookingRepo       repository.BookingRepository
	clientRepo        repository.ClientRepository
	auditService      service.AuditService
	now               func() time.Time
}

func NewMedicalRecordUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	medicalRecordRepo repository.MedicalRecordRepository,
	bookingRepo repository.BookingRepository,
	clientRepo repository.ClientRepository,
	auditService service.AuditService,
) MedicalRecordUsecase {
	return &medicalRecordUsecase{
		transactor:        transactor,
		log:               log,
		medicalRecordRepo: medicalRecordRepo,
		bookingRepo:       bookingRepo,
		clientRepo:        clientRepo,
		auditService:      auditService,
		now:               time.Now,
	}
}

// CreateMedicalRecord writes a session note. With a booking the record takes
// the booking's therapist and start time; a booking holds at most one record.
func (u *medicalRecordUsecase) CreateMedicalRecord(ctx context.Context, actor entity.Actor, req *dto.CreateMedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	if !actor.IsAdmin() && !actor.IsTherapist() {
		return nil, ErrMedicalRecordForbidden
	}

	record := &entity.MedicalRecord{
		ClientID:    req.ClientID,
		TherapistID: actor.ID,
		BookingID:   req.BookingID,
		Notes:       req.Notes,
		SessionDate: u.now(),
	}
	if req.SessionDate != nil {
		record.SessionDate = *req.SessionDate
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		client, err := u.clientRepo.FindByID(tx, req.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return ErrClientNotFound
		}

		if req.BookingID != nil {
			booking, err := u.bookingRepo.FindByID(tx, *req.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return ErrBookingNotFound
			}
			if !actor.CanManageBooking(booking.TherapistID) {
				return ErrMedicalRecordForbidden
			}
			if booking.ClientID == nil || *booking.ClientID != req.ClientID {
				return ErrRecordClientMismatch
			}

			existing, err := u.medicalRecordRepo.FindByBookingID(tx, booking.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrMedicalRecordExists
			}

			record.TherapistID = booking.TherapistID
			if req.SessionDate == nil {
				record.SessionDate = booking.StartTime
			}
		} else if !actor.IsTherapist() {
			return &ValidationError{Rule: RuleTherapist, Err: ErrTherapistRequired}
		}

		if err := u.medicalRecordRepo.Create(tx, record); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionMedicalRecordSave, "medical_record", record.ID.String(), converter.MedicalRecordToResponse(record)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr),
			errors.Is(err, ErrClientNotFound),
			errors.Is(err, ErrBookingNotFound),
			errors.Is(err, ErrMedicalRecordForbidden),
			errors.Is(err, ErrRecordClientMismatch),
			errors.Is(err, ErrMedicalRecordExists):
			return nil, err
		case isDuplicateKeyError(err, "medical_records_booking_id"):
			return nil, ErrMedicalRecordExists
		}
		u.log.Warnf("Failed to create medical record: %+v", err)
		return nil, err
	}

	return converter.MedicalRecordToResponse(record), nil
}

func (u *medicalRecordUsecase) GetMedicalRecord(ctx context.Context, actor entity.Actor, recordID uuid.UUID) (*dto.MedicalRecordResponse, error) {
	record, err := u.medicalRecordRepo.FindByID(u.transactor.Conn(ctx), recordID)
	if err != nil {
		u.log.Warnf("Failed to find medical record: %+v", err)
		return nil, err
	}
	if record == nil {
		return nil, ErrMedicalRecordNotFound
	}
	if !actor.CanManageBooking(record.TherapistID) {
		return nil, ErrMedicalRecordForbidden
	}

	return converter.MedicalRecordToResponse(record), nil
}
