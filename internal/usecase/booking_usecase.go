package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingForbidden        = errors.New("you are not allowed to access this booking")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrCannotCancelPast        = errors.New("cannot cancel a booking that has already started")
	ErrInvalidBookingStatus    = errors.New("invalid booking status")
	ErrInvalidStatusTransition = errors.New("booking status cannot change that way")
	ErrTherapistRequired       = errors.New("therapist_id is required")
	ErrInvalidDayFilter        = errors.New("invalid date, use DD-MM-YYYY or YYYY-MM-DD")
	ErrBookingOperationFailed  = errors.New("booking operation failed")
)

// BookingUsecase is the booking lifecycle manager. Every operation receives
// the calling actor; admins act on any booking, therapists only on their own
// and guardians on none.
type BookingUsecase interface {
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	GetBookingsForDay(ctx context.Context, actor entity.Actor, date string) (*dto.BookingListResponse, error)
	GetTherapistBookings(ctx context.Context, actor entity.Actor, therapistID uuid.UUID, date string) (*dto.BookingListResponse, error)
	UpdateBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error)
	// SetBookingStatus is the soft path: a CANCELLED status keeps the row.
	SetBookingStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	// CancelBooking is the hard path: the row is deleted.
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) error
}

type bookingUsecase struct {
	transactor        repository.Transactor
	log               *logrus.Logger
	bookingRepo       repository.BookingRepository
	medicalRecordRepo repository.MedicalRecordRepository
	validator         BookingValidator
	auditService      service.AuditService
	publisher         service.NotificationPublisher
	loc               *time.Location
	now               func() time.Time
}

func NewBookingUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	medicalRecordRepo repository.MedicalRecordRepository,
	validator BookingValidator,
	auditService service.AuditService,
	publisher service.NotificationPublisher,
	rules BookingRules,
) BookingUsecase {
	if rules.Location == nil {
		rules.Location = time.Local
	}
	if rules.Now == nil {
		rules.Now = time.Now
	}
	return &bookingUsecase{
		transactor:        transactor,
		log:               log,
		bookingRepo:       bookingRepo,
		medicalRecordRepo: medicalRecordRepo,
		validator:         validator,
		auditService:      auditService,
		publisher:         publisher,
		loc:               rules.Location,
		now:               rules.Now,
	}
}

// CreateBooking validates and inserts in one transaction. The status is always
// PENDING. The created event is queued after commit when a client is set.
func (u *bookingUsecase) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if !actor.IsAdmin() && !actor.IsTherapist() {
		return nil, ErrBookingForbidden
	}

	therapistID := actor.ID
	if req.TherapistID != nil {
		therapistID = *req.TherapistID
	} else if actor.IsAdmin() {
		return nil, &ValidationError{Rule: RuleTherapist, Err: ErrTherapistRequired}
	}
	if actor.IsTherapist() && therapistID != actor.ID {
		return nil, ErrBookingForbidden
	}

	input := BookingInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		RoomID:      req.RoomID,
		TherapistID: therapistID,
		ClientID:    req.ClientID,
	}

	var booking *entity.Booking
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		validated, err := u.validator.ValidateForCreate(ctx, tx, input)
		if err != nil {
			return err
		}

		booking = &entity.Booking{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			StartTime:   validated.Start,
			EndTime:     validated.End,
			Status:      entity.BookingStatusPending,
			RoomID:      validated.RoomID,
			TherapistID: therapistID,
			ClientID:    req.ClientID,
		}
		if err := u.bookingRepo.Create(tx, booking); err != nil {
			return err
		}

		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionBookingCreate, "booking", booking.ID.String(), converter.BookingToResponse(booking)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, u.mutationError("create", err)
	}

	metrics.IncBookingOperation("create", "ok")
	u.log.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"room_id":      booking.RoomID,
		"therapist_id": booking.TherapistID,
	}).Info("Booking created")

	if booking.HasClient() {
		u.publish(ctx, service.NotificationEvent{Type: entity.NotificationBookingCreated, BookingID: booking.ID})
	}

	return u.reload(ctx, booking), nil
}

func (u *bookingUsecase) GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.findOwned(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	return converter.BookingToResponse(booking), nil
}

// GetBookingsForDay lists every booking for admins and the therapist's own
// bookings otherwise. A non-empty date keeps only bookings lying entirely
// within that local calendar day.
func (u *bookingUsecase) GetBookingsForDay(ctx context.Context, actor entity.Actor, date string) (*dto.BookingListResponse, error) {
	if actor.IsTherapist() {
		return u.GetTherapistBookings(ctx, actor, actor.ID, date)
	}
	if !actor.IsAdmin() {
		return nil, ErrBookingForbidden
	}

	day, hasDay, err := ParseDayFilter(date, u.loc)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindAll(u.transactor.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find bookings: %+v", err)
		return nil, ErrBookingOperationFailed
	}

	if hasDay {
		bookings = FilterBookingsForDay(bookings, day)
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) GetTherapistBookings(ctx context.Context, actor entity.Actor, therapistID uuid.UUID, date string) (*dto.BookingListResponse, error) {
	if !actor.CanManageBooking(therapistID) {
		return nil, ErrBookingForbidden
	}

	day, hasDay, err := ParseDayFilter(date, u.loc)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByTherapistID(u.transactor.Conn(ctx), therapistID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for therapist %s: %+v", therapistID, err)
		return nil, ErrBookingOperationFailed
	}

	if hasDay {
		bookings = FilterBookingsForDay(bookings, day)
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// UpdateBooking merges the request over the stored booking. Only the room axis
// is re-probed, excluding the booking itself.
func (u *bookingUsecase) UpdateBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	existing, err := u.findOwned(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	before := converter.BookingToResponse(existing)

	patch := BookingPatch{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		RoomID:    req.RoomID,
	}

	updated := *existing
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		validated, err := u.validator.ValidateForUpdate(ctx, tx, existing, patch)
		if err != nil {
			return err
		}

		if req.Title != nil {
			updated.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			updated.Description = req.Description
		}
		updated.StartTime = validated.Start
		updated.EndTime = validated.End
		if validated.RoomID != existing.RoomID {
			updated.RoomID = validated.RoomID
			updated.Room = validated.Room
		}

		if err := u.bookingRepo.Update(tx, &updated); err != nil {
			return err
		}

		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionBookingUpdate, "booking", bookingID.String(), before, converter.BookingToResponse(&updated)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, u.mutationError("update", err)
	}

	metrics.IncBookingOperation("update", "ok")

	if updated.HasClient() {
		u.publish(ctx, service.NotificationEvent{Type: entity.NotificationBookingUpdated, BookingID: bookingID})
	}

	return u.reload(ctx, &updated), nil
}

func (u *bookingUsecase) SetBookingStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	status := entity.BookingStatus(strings.ToUpper(req.Status))
	if !status.IsValid() {
		return nil, ErrInvalidBookingStatus
	}

	existing, err := u.findOwned(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if !existing.CanTransitionTo(status) {
		return nil, ErrInvalidStatusTransition
	}
	if existing.Status == status {
		return converter.BookingToResponse(existing), nil
	}

	previous := existing.Status
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.bookingRepo.UpdateStatus(tx, bookingID, []entity.BookingStatus{previous}, status)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidStatusTransition
		}

		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionBookingStatus, "booking", bookingID.String(),
			map[string]string{"status": string(previous)}, map[string]string{"status": string(status)}); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, u.mutationError("status", err)
	}

	metrics.IncBookingOperation("status", "ok")
	existing.Status = status

	if existing.HasClient() {
		eventType := entity.NotificationBookingUpdated
		if status == entity.BookingStatusCancelled {
			eventType = entity.NotificationBookingCancelled
		}
		u.publish(ctx, service.NotificationEvent{Type: eventType, BookingID: bookingID})
	}

	return converter.BookingToResponse(existing), nil
}

// CancelBooking queues the cancelled event with a snapshot first, then
// detaches any medical record and deletes the booking.
func (u *bookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) error {
	if !actor.IsAdmin() && !actor.IsTherapist() {
		return ErrBookingForbidden
	}

	booking, err := u.bookingRepo.FindByIDWithParticipants(u.transactor.Conn(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return ErrBookingOperationFailed
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if !actor.CanManageBooking(booking.TherapistID) {
		return ErrBookingForbidden
	}
	if booking.IsCancelled() {
		return ErrBookingAlreadyCancelled
	}
	if booking.StartTime.Before(u.now()) {
		return ErrCannotCancelPast
	}

	if booking.HasClient() {
		u.publish(ctx, service.NotificationEvent{
			Type:      entity.NotificationBookingCancelled,
			BookingID: booking.ID,
			Snapshot:  service.NewBookingSnapshot(booking),
		})
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		cleared, err := u.medicalRecordRepo.ClearBookingReference(tx, bookingID)
		if err != nil {
			return err
		}
		if cleared > 0 {
			u.log.WithField("booking_id", bookingID).Info("Medical record detached from cancelled booking")
		}

		rows, err := u.bookingRepo.Delete(tx, bookingID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrBookingNotFound
		}

		if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionBookingCancel, "booking", bookingID.String(), converter.BookingToResponse(booking)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return u.mutationError("cancel", err)
	}

	metrics.IncBookingOperation("cancel", "ok")
	u.log.WithField("booking_id", bookingID).Info("Booking cancelled")
	return nil
}

func (u *bookingUsecase) findOwned(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*entity.Booking, error) {
	if !actor.IsAdmin() && !actor.IsTherapist() {
		return nil, ErrBookingForbidden
	}

	booking, err := u.bookingRepo.FindByID(u.transactor.Conn(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, ErrBookingOperationFailed
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !actor.CanManageBooking(booking.TherapistID) {
		return nil, ErrBookingForbidden
	}
	return booking, nil
}

// reload fetches the booking with Room and Therapist for the response and
// falls back to the in-memory copy.
func (u *bookingUsecase) reload(ctx context.Context, booking *entity.Booking) *dto.BookingResponse {
	full, err := u.bookingRepo.FindByID(u.transactor.Conn(ctx), booking.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return converter.BookingToResponse(booking)
	}
	return converter.BookingToResponse(full)
}

func (u *bookingUsecase) publish(ctx context.Context, event service.NotificationEvent) {
	if err := u.publisher.Publish(ctx, event); err != nil {
		metrics.IncNotificationFailure("publish")
		u.log.WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"event":      event.Type,
		}).Warnf("Failed to enqueue notification: %+v", err)
	}
}

// mutationError passes business errors through, maps overlap constraint
// violations to the matching conflict and hides everything else behind
// ErrBookingOperationFailed.
func (u *bookingUsecase) mutationError(operation string, err error) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		metrics.IncBookingOperation(operation, "rejected")
		return err
	case isExclusionViolation(err, "bookings_room_no_overlap"):
		metrics.IncBookingOperation(operation, "rejected")
		return &ValidationError{Rule: RuleRoomConflict, Err: ErrRoomConflict}
	case isExclusionViolation(err, "bookings_therapist_no_overlap"):
		metrics.IncBookingOperation(operation, "rejected")
		return &ValidationError{Rule: RuleTherapistBusy, Err: ErrTherapistConflict}
	case isExclusionViolation(err, "bookings_client_no_overlap"):
		metrics.IncBookingOperation(operation, "rejected")
		return &ValidationError{Rule: RuleClientBusy, Err: ErrClientConflict}
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrBookingForbidden),
		errors.Is(err, ErrInvalidStatusTransition):
		metrics.IncBookingOperation(operation, "rejected")
		return err
	}

	metrics.IncBookingOperation(operation, "error")
	u.log.Errorf("Booking %s failed: %+v", operation, err)
	return ErrBookingOperationFailed
}
