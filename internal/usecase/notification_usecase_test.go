package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationUsecase(guardianRepo *mocks.GuardianRepository, notificationRepo *mocks.NotificationRepository, bookingRepo *mocks.BookingRepository) NotificationUsecase {
	transactor := &mocks.Transactor{}
	dispatcher := service.NewNotificationDispatcher(transactor, testLogger(), bookingRepo, notificationRepo, service.DispatcherOptions{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return NewNotificationUsecase(transactor, testLogger(), guardianRepo, notificationRepo, dispatcher)
}

func TestNotificationUsecase_GetMyNotifications(t *testing.T) {
	actor := guardianActor()
	guardian := &entity.Guardian{ID: uuid.New(), UserID: &actor.ID}

	guardianRepo := new(mocks.GuardianRepository)
	notificationRepo := new(mocks.NotificationRepository)
	guardianRepo.On("FindByUserID", mock.Anything, actor.ID).Return(guardian, nil).Once()
	notificationRepo.On("FindByGuardianID", mock.Anything, guardian.ID, true).
		Return([]entity.Notification{{ID: uuid.New(), GuardianID: guardian.ID}}, nil).Once()

	resp, err := newNotificationUsecase(guardianRepo, notificationRepo, new(mocks.BookingRepository)).
		GetMyNotifications(context.Background(), actor, true)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Unread)
}

func TestNotificationUsecase_RequiresGuardian(t *testing.T) {
	uc := newNotificationUsecase(new(mocks.GuardianRepository), new(mocks.NotificationRepository), new(mocks.BookingRepository))

	_, err := uc.GetMyNotifications(context.Background(), therapistActor(uuid.New()), false)
	assert.ErrorIs(t, err, ErrGuardianNotFound)

	actor := guardianActor()
	guardianRepo := new(mocks.GuardianRepository)
	guardianRepo.On("FindByUserID", mock.Anything, actor.ID).Return(nil, nil).Once()
	uc = newNotificationUsecase(guardianRepo, new(mocks.NotificationRepository), new(mocks.BookingRepository))

	_, err = uc.GetMyNotifications(context.Background(), actor, false)
	assert.ErrorIs(t, err, ErrGuardianNotFound)
}

func TestNotificationUsecase_MarkAsRead(t *testing.T) {
	actor := guardianActor()
	guardian := &entity.Guardian{ID: uuid.New()}
	notificationID := uuid.New()

	guardianRepo := new(mocks.GuardianRepository)
	notificationRepo := new(mocks.NotificationRepository)
	guardianRepo.On("FindByUserID", mock.Anything, actor.ID).Return(guardian, nil)
	notificationRepo.On("MarkAsRead", mock.Anything, notificationID, guardian.ID).Return(int64(1), nil).Once()
	uc := newNotificationUsecase(guardianRepo, notificationRepo, new(mocks.BookingRepository))

	assert.NoError(t, uc.MarkAsRead(context.Background(), actor, notificationID))

	other := uuid.New()
	notificationRepo.On("MarkAsRead", mock.Anything, other, guardian.ID).Return(int64(0), nil).Once()
	assert.ErrorIs(t, uc.MarkAsRead(context.Background(), actor, other), ErrNotificationNotFound)
}

func TestNotificationUsecase_SweepReminders_NothingDue(t *testing.T) {
	bookingRepo := new(mocks.BookingRepository)
	bookingRepo.On("FindByStatusStartingBetween", mock.Anything, entity.BookingStatusConfirmed, mock.Anything, mock.Anything).
		Return([]entity.Booking{}, nil).Once()

	resp, err := newNotificationUsecase(new(mocks.GuardianRepository), new(mocks.NotificationRepository), bookingRepo).
		SweepReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Reminded)
}
