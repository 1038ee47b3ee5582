package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func bookingWithGuardians(guardians ...entity.Guardian) *entity.Booking {
	clientID := uuid.New()
	therapistID := uuid.New()
	start := time.Date(2030, 5, 6, 14, 0, 0, 0, time.UTC)
	return &entity.Booking{
		ID:          uuid.New(),
		Title:       "Speech therapy",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      entity.BookingStatusPending,
		RoomID:      uuid.New(),
		TherapistID: therapistID,
		ClientID:    &clientID,
		Room:        &entity.Room{Name: "Sala 1"},
		Therapist:   &entity.User{ID: therapistID, FullName: "Ana Therapist"},
		Client:      &entity.Client{ID: clientID, FullName: "Joao", Guardians: guardians},
	}
}

func newTestDispatcher(bookingRepo *mocks.BookingRepository, notificationRepo *mocks.NotificationRepository, now time.Time) NotificationDispatcher {
	return NewNotificationDispatcher(&mocks.Transactor{}, testLogger(), bookingRepo, notificationRepo, DispatcherOptions{
		Location:            time.UTC,
		ReminderConcurrency: 2,
		Now:                 func() time.Time { return now },
	})
}

func TestNotificationDispatcher_NotifyCreated_OnePerGuardian(t *testing.T) {
	booking := bookingWithGuardians(entity.Guardian{ID: uuid.New()}, entity.Guardian{ID: uuid.New()})
	bookingRepo := new(mocks.BookingRepository)
	notificationRepo := new(mocks.NotificationRepository)

	bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

	var written []entity.Notification
	notificationRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]entity.Notification) }).
		Return(nil).Once()

	d := newTestDispatcher(bookingRepo, notificationRepo, time.Now())
	require.NoError(t, d.NotifyCreated(context.Background(), booking.ID))

	require.Len(t, written, 2)
	seen := map[uuid.UUID]bool{}
	for _, n := range written {
		seen[n.GuardianID] = true
		assert.Equal(t, entity.NotificationBookingCreated, n.Type)
		assert.Equal(t, entity.PriorityNormal, n.Priority)
		assert.Equal(t, booking.ID, *n.BookingID)
		assert.Equal(t, *booking.ClientID, *n.ClientID)
		assert.Equal(t, booking.TherapistID, *n.TherapistID)
		assert.Contains(t, n.Message, "Joao")
		assert.Contains(t, n.Message, "Ana Therapist")
		assert.Contains(t, n.Message, "Sala 1")
		assert.Equal(t, "Sala 1", n.Metadata["room_name"])
		assert.Equal(t, "2030-05-06T14:00:00Z", n.Metadata["session_date"])
	}
	assert.Len(t, seen, 2)
}

func TestNotificationDispatcher_SilentWithoutRecipients(t *testing.T) {
	t.Run("NoClient", func(t *testing.T) {
		booking := bookingWithGuardians()
		booking.ClientID = nil
		booking.Client = nil
		bookingRepo := new(mocks.BookingRepository)
		notificationRepo := new(mocks.NotificationRepository)
		bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

		d := newTestDispatcher(bookingRepo, notificationRepo, time.Now())
		assert.NoError(t, d.NotifyUpdated(context.Background(), booking.ID))
		notificationRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("NoGuardians", func(t *testing.T) {
		booking := bookingWithGuardians()
		bookingRepo := new(mocks.BookingRepository)
		notificationRepo := new(mocks.NotificationRepository)
		bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

		d := newTestDispatcher(bookingRepo, notificationRepo, time.Now())
		assert.NoError(t, d.NotifyCreated(context.Background(), booking.ID))
		notificationRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("BookingGone", func(t *testing.T) {
		bookingRepo := new(mocks.BookingRepository)
		notificationRepo := new(mocks.NotificationRepository)
		id := uuid.New()
		bookingRepo.On("FindByIDWithParticipants", mock.Anything, id).Return(nil, nil).Once()

		d := newTestDispatcher(bookingRepo, notificationRepo, time.Now())
		assert.NoError(t, d.NotifyReminder(context.Background(), id))
		notificationRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}

func TestNotificationDispatcher_NotifyCancelled_FromSnapshot(t *testing.T) {
	booking := bookingWithGuardians(entity.Guardian{ID: uuid.New()})
	snapshot := NewBookingSnapshot(booking)
	bookingRepo := new(mocks.BookingRepository)
	notificationRepo := new(mocks.NotificationRepository)

	var written []entity.Notification
	notificationRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]entity.Notification) }).
		Return(nil).Once()

	d := newTestDispatcher(bookingRepo, notificationRepo, time.Now())
	require.NoError(t, d.Handle(context.Background(), NotificationEvent{
		Type:      entity.NotificationBookingCancelled,
		BookingID: booking.ID,
		Snapshot:  snapshot,
	}))

	require.Len(t, written, 1)
	assert.Nil(t, written[0].BookingID)
	assert.Equal(t, entity.PriorityHigh, written[0].Priority)
	assert.Equal(t, booking.ID.String(), written[0].Metadata["booking_id"])
	bookingRepo.AssertNotCalled(t, "FindByIDWithParticipants", mock.Anything, mock.Anything)
}

func TestNotificationDispatcher_Handle_UnknownType(t *testing.T) {
	d := newTestDispatcher(new(mocks.BookingRepository), new(mocks.NotificationRepository), time.Now())

	err := d.Handle(context.Background(), NotificationEvent{Type: entity.NotificationGeneral})
	assert.ErrorIs(t, err, ErrUnknownNotificationType)
}

func TestNotificationDispatcher_SweepReminders(t *testing.T) {
	now := time.Date(2030, 5, 5, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)

	first := bookingWithGuardians(entity.Guardian{ID: uuid.New()})
	second := bookingWithGuardians(entity.Guardian{ID: uuid.New()}, entity.Guardian{ID: uuid.New()})
	broken := bookingWithGuardians(entity.Guardian{ID: uuid.New()})

	bookingRepo := new(mocks.BookingRepository)
	notificationRepo := new(mocks.NotificationRepository)

	bookingRepo.On("FindByStatusStartingBetween", mock.Anything, entity.BookingStatusConfirmed, tomorrow, tomorrow.AddDate(0, 0, 1)).
		Return([]entity.Booking{*first, *second, *broken}, nil).Once()
	bookingRepo.On("FindByIDWithParticipants", mock.Anything, first.ID).Return(first, nil).Once()
	bookingRepo.On("FindByIDWithParticipants", mock.Anything, second.ID).Return(second, nil).Once()
	bookingRepo.On("FindByIDWithParticipants", mock.Anything, broken.ID).Return(nil, errors.New("db down")).Once()

	var mu sync.Mutex
	var total int
	notificationRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			for _, n := range args.Get(1).([]entity.Notification) {
				assert.Equal(t, entity.NotificationBookingReminder, n.Type)
				assert.Equal(t, entity.PriorityHigh, n.Priority)
				total++
			}
		}).
		Return(nil)

	d := newTestDispatcher(bookingRepo, notificationRepo, now)
	reminded, err := d.SweepReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, reminded)
	assert.Equal(t, 3, total)
	bookingRepo.AssertExpectations(t)
}

func TestNotificationDispatcher_SweepReminders_QueryError(t *testing.T) {
	bookingRepo := new(mocks.BookingRepository)
	bookingRepo.On("FindByStatusStartingBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down")).Once()

	d := newTestDispatcher(bookingRepo, new(mocks.NotificationRepository), time.Now())
	_, err := d.SweepReminders(context.Background())
	assert.Error(t, err)
}
