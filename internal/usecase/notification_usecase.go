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
)

var (
	ErrGuardianNotFound     = errors.New("no guardian is linked to this account")
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationUsecase serves the guardian inbox and the manual reminder sweep.
type NotificationUsecase interface {
	GetMyNotifications(ctx context.Context, actor entity.Actor, unreadOnly bool) (*dto.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, actor entity.Actor, notificationID uuid.UUID) error
	SweepReminders(ctx context.Context) (*dto.ReminderSweepResponse, error)
}

type notificationUsecase struct {
	transactor       repository.Transactor
	log              *logrus.Logger
	guardianRepo     repository.GuardianRepository
	notificationRepo repository.NotificationRepository
	dispatcher       service.NotificationDispatcher
}

func NewNotificationUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	guardianRepo repository.GuardianRepository,
	notificationRepo repository.NotificationRepository,
	dispatcher service.NotificationDispatcher,
) NotificationUsecase {
	return &notificationUsecase{
		transactor:       transactor,
		log:              log,
		guardianRepo:     guardianRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

func (u *notificationUsecase) GetMyNotifications(ctx context.Context, actor entity.Actor, unreadOnly bool) (*dto.NotificationListResponse, error) {
	guardian, err := u.guardianFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	notifications, err := u.notificationRepo.FindByGuardianID(u.transactor.Conn(ctx), guardian.ID, unreadOnly)
	if err != nil {
		u.log.Warnf("Failed to find notifications for guardian %s: %+v", guardian.ID, err)
		return nil, err
	}

	return converter.NotificationsToResponse(notifications), nil
}

func (u *notificationUsecase) MarkAsRead(ctx context.Context, actor entity.Actor, notificationID uuid.UUID) error {
	guardian, err := u.guardianFor(ctx, actor)
	if err != nil {
		return err
	}

	rows, err := u.notificationRepo.MarkAsRead(u.transactor.Conn(ctx), notificationID, guardian.ID)
	if err != nil {
		u.log.Warnf("Failed to mark notification %s as read: %+v", notificationID, err)
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) SweepReminders(ctx context.Context) (*dto.ReminderSweepResponse, error) {
	reminded, err := u.dispatcher.SweepReminders(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ReminderSweepResponse{Reminded: reminded}, nil
}

func (u *notificationUsecase) guardianFor(ctx context.Context, actor entity.Actor) (*entity.Guardian, error) {
	if !actor.IsGuardian() {
		return nil, ErrGuardianNotFound
	}
	guardian, err := u.guardianRepo.FindByUserID(u.transactor.Conn(ctx), actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find guardian for user %s: %+v", actor.ID, err)
		return nil, err
	}
	if guardian == nil {
		return nil, ErrGuardianNotFound
	}
	return guardian, nil
}
