package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateForCreate(ctx context.Context, db *gorm.DB, input BookingInput) (*ValidatedBooking, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ValidatedBooking), args.Error(1)
}

func (m *mockValidator) ValidateForUpdate(ctx context.Context, db *gorm.DB, existing *entity.Booking, patch BookingPatch) (*ValidatedBooking, error) {
	args := m.Called(existing.ID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ValidatedBooking), args.Error(1)
}

type bookingFixture struct {
	bookingRepo       *mocks.BookingRepository
	medicalRecordRepo *mocks.MedicalRecordRepository
	validator         *mockValidator
	publisher         *recordingPublisher
	transactor        *mocks.Transactor
}

func newBookingFixture() *bookingFixture {
	return &bookingFixture{
		bookingRepo:       new(mocks.BookingRepository),
		medicalRecordRepo: new(mocks.MedicalRecordRepository),
		validator:         new(mockValidator),
		publisher:         &recordingPublisher{},
		transactor:        &mocks.Transactor{},
	}
}

func (f *bookingFixture) usecase() BookingUsecase {
	audit, _ := newAuditService()
	return NewBookingUsecase(f.transactor, testLogger(), f.bookingRepo, f.medicalRecordRepo, f.validator, audit, f.publisher, testRules())
}

func futureBooking(therapistID uuid.UUID, withClient bool) *entity.Booking {
	start := time.Date(2030, 5, 6, 10, 0, 0, 0, time.UTC)
	booking := &entity.Booking{
		ID:          uuid.New(),
		Title:       "Session",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      entity.BookingStatusPending,
		RoomID:      uuid.New(),
		TherapistID: therapistID,
	}
	if withClient {
		clientID := uuid.New()
		booking.ClientID = &clientID
		booking.Client = &entity.Client{ID: clientID, FullName: "Joao", Guardians: []entity.Guardian{{ID: uuid.New()}}}
	}
	return booking
}

func createRequest(roomID uuid.UUID, clientID *uuid.UUID) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		Title:     "  Session  ",
		StartTime: "2030-05-06T10:00:00Z",
		EndTime:   "2030-05-06T11:00:00Z",
		RoomID:    roomID,
		ClientID:  clientID,
		Status:    "CONFIRMED",
	}
}

func validated(roomID uuid.UUID) *ValidatedBooking {
	start := time.Date(2030, 5, 6, 10, 0, 0, 0, time.UTC)
	return &ValidatedBooking{Start: start, End: start.Add(time.Hour), RoomID: roomID}
}

func TestBookingUsecase_CreateBooking_Success(t *testing.T) {
	f := newBookingFixture()
	therapistID := uuid.New()
	roomID := uuid.New()
	clientID := uuid.New()
	bookingID := uuid.New()

	f.validator.On("ValidateForCreate", mock.MatchedBy(func(in BookingInput) bool {
		return in.TherapistID == therapistID && in.RoomID == roomID && *in.ClientID == clientID
	})).Return(validated(roomID), nil).Once()

	var created *entity.Booking
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Booking)
			created.ID = bookingID
		}).
		Return(nil).Once()
	f.bookingRepo.On("FindByID", mock.Anything, bookingID).
		Return(&entity.Booking{ID: bookingID, Title: "Session", Status: entity.BookingStatusPending, Room: &entity.Room{ID: roomID, Name: "Sala 1"}}, nil).Once()

	resp, err := f.usecase().CreateBooking(context.Background(), therapistActor(therapistID), createRequest(roomID, &clientID))

	require.NoError(t, err)
	assert.Equal(t, bookingID, resp.ID)
	assert.Equal(t, "Sala 1", resp.Room.Name)
	assert.Equal(t, entity.BookingStatusPending, created.Status)
	assert.Equal(t, "Session", created.Title)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entity.NotificationBookingCreated, events[0].Type)
	assert.Equal(t, bookingID, events[0].BookingID)
}

func TestBookingUsecase_CreateBooking_NoClientNoEvent(t *testing.T) {
	f := newBookingFixture()
	therapistID := uuid.New()
	roomID := uuid.New()

	f.validator.On("ValidateForCreate", mock.Anything).Return(validated(roomID), nil).Once()
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.bookingRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := f.usecase().CreateBooking(context.Background(), therapistActor(therapistID), createRequest(roomID, nil))

	require.NoError(t, err)
	assert.Empty(t, f.publisher.Events())
}

func TestBookingUsecase_CreateBooking_PublishFailureDoesNotFail(t *testing.T) {
	f := newBookingFixture()
	f.publisher.err = errors.New("queue full")
	roomID := uuid.New()
	clientID := uuid.New()

	f.validator.On("ValidateForCreate", mock.Anything).Return(validated(roomID), nil).Once()
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.bookingRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), createRequest(roomID, &clientID))
	assert.NoError(t, err)
}

func TestBookingUsecase_CreateBooking_Authorization(t *testing.T) {
	roomID := uuid.New()

	t.Run("GuardianForbidden", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.usecase().CreateBooking(context.Background(), guardianActor(), createRequest(roomID, nil))
		assert.ErrorIs(t, err, ErrBookingForbidden)
	})

	t.Run("TherapistForOtherTherapist", func(t *testing.T) {
		f := newBookingFixture()
		req := createRequest(roomID, nil)
		other := uuid.New()
		req.TherapistID = &other

		_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), req)
		assert.ErrorIs(t, err, ErrBookingForbidden)
	})

	t.Run("AdminMustNameTherapist", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.usecase().CreateBooking(context.Background(), adminActor(), createRequest(roomID, nil))

		requireRule(t, err, RuleTherapist)
		assert.ErrorIs(t, err, ErrTherapistRequired)
		f.validator.AssertNotCalled(t, "ValidateForCreate", mock.Anything)
	})

	t.Run("AdminForTherapist", func(t *testing.T) {
		f := newBookingFixture()
		therapistID := uuid.New()
		req := createRequest(roomID, nil)
		req.TherapistID = &therapistID

		f.validator.On("ValidateForCreate", mock.MatchedBy(func(in BookingInput) bool { return in.TherapistID == therapistID })).
			Return(validated(roomID), nil).Once()
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.bookingRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil).Once()

		_, err := f.usecase().CreateBooking(context.Background(), adminActor(), req)
		assert.NoError(t, err)
	})
}

func TestBookingUsecase_CreateBooking_Errors(t *testing.T) {
	roomID := uuid.New()

	t.Run("ValidationPassesThrough", func(t *testing.T) {
		f := newBookingFixture()
		f.validator.On("ValidateForCreate", mock.Anything).
			Return(nil, &ValidationError{Rule: RuleRoomConflict, Err: ErrRoomConflict}).Once()

		_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), createRequest(roomID, nil))

		requireRule(t, err, RuleRoomConflict)
		f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("ExclusionConstraintMapsToConflict", func(t *testing.T) {
		cases := map[string]string{
			"bookings_room_no_overlap":      RuleRoomConflict,
			"bookings_therapist_no_overlap": RuleTherapistBusy,
			"bookings_client_no_overlap":    RuleClientBusy,
		}
		for constraint, rule := range cases {
			f := newBookingFixture()
			f.validator.On("ValidateForCreate", mock.Anything).Return(validated(roomID), nil).Once()
			f.bookingRepo.On("Create", mock.Anything, mock.Anything).
				Return(&pgconn.PgError{Code: "23P01", ConstraintName: constraint}).Once()

			_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), createRequest(roomID, nil))
			requireRule(t, err, rule)
		}
	})

	t.Run("StorageFailureIsGeneric", func(t *testing.T) {
		f := newBookingFixture()
		f.validator.On("ValidateForCreate", mock.Anything).Return(validated(roomID), nil).Once()
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), createRequest(roomID, nil))
		assert.ErrorIs(t, err, ErrBookingOperationFailed)
	})

	t.Run("CommitFailureIsGeneric", func(t *testing.T) {
		f := newBookingFixture()
		f.transactor.Err = errors.New("commit failed")
		f.validator.On("ValidateForCreate", mock.Anything).Return(validated(roomID), nil).Once()
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		clientID := uuid.New()
		_, err := f.usecase().CreateBooking(context.Background(), therapistActor(uuid.New()), createRequest(roomID, &clientID))
		assert.ErrorIs(t, err, ErrBookingOperationFailed)
		assert.Empty(t, f.publisher.Events())
	})
}

func TestBookingUsecase_GetBooking_Ownership(t *testing.T) {
	therapistID := uuid.New()
	booking := futureBooking(therapistID, false)

	f := newBookingFixture()
	f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	uc := f.usecase()

	_, err := uc.GetBooking(context.Background(), therapistActor(therapistID), booking.ID)
	assert.NoError(t, err)

	_, err = uc.GetBooking(context.Background(), therapistActor(uuid.New()), booking.ID)
	assert.ErrorIs(t, err, ErrBookingForbidden)

	_, err = uc.GetBooking(context.Background(), adminActor(), booking.ID)
	assert.NoError(t, err)

	missing := uuid.New()
	f.bookingRepo.On("FindByID", mock.Anything, missing).Return(nil, nil)
	_, err = uc.GetBooking(context.Background(), adminActor(), missing)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingUsecase_GetBookingsForDay(t *testing.T) {
	therapistID := uuid.New()
	inside := futureBooking(therapistID, false)
	spanning := futureBooking(therapistID, false)
	spanning.StartTime = time.Date(2030, 5, 6, 23, 30, 0, 0, time.UTC)
	spanning.EndTime = time.Date(2030, 5, 7, 0, 30, 0, 0, time.UTC)

	t.Run("AdminFiltersDay", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("FindAll", mock.Anything).Return([]entity.Booking{*inside, *spanning}, nil).Once()

		resp, err := f.usecase().GetBookingsForDay(context.Background(), adminActor(), "06-05-2030")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, inside.ID, resp.Bookings[0].ID)
	})

	t.Run("AdminWithoutFilter", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("FindAll", mock.Anything).Return([]entity.Booking{*inside, *spanning}, nil).Once()

		resp, err := f.usecase().GetBookingsForDay(context.Background(), adminActor(), "")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("TherapistSeesOwn", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("FindByTherapistID", mock.Anything, therapistID).Return([]entity.Booking{*inside}, nil).Once()

		resp, err := f.usecase().GetBookingsForDay(context.Background(), therapistActor(therapistID), "2030-05-06")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		f.bookingRepo.AssertNotCalled(t, "FindAll", mock.Anything)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.usecase().GetBookingsForDay(context.Background(), adminActor(), "yesterday")
		assert.ErrorIs(t, err, ErrInvalidDayFilter)
	})

	t.Run("GuardianForbidden", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.usecase().GetBookingsForDay(context.Background(), guardianActor(), "")
		assert.ErrorIs(t, err, ErrBookingForbidden)
	})
}

func TestBookingUsecase_UpdateBooking(t *testing.T) {
	therapistID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		newEnd := "2030-05-06T11:30:00Z"
		req := &dto.UpdateBookingRequest{Title: strPtr(" Renamed "), EndTime: &newEnd}

		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
		f.validator.On("ValidateForUpdate", booking.ID, BookingPatch{EndTime: &newEnd}).
			Return(&ValidatedBooking{Start: booking.StartTime, End: booking.StartTime.Add(90 * time.Minute), RoomID: booking.RoomID}, nil).Once()

		var saved *entity.Booking
		f.bookingRepo.On("Update", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.Booking) }).
			Return(nil).Once()

		_, err := f.usecase().UpdateBooking(context.Background(), therapistActor(therapistID), booking.ID, req)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", saved.Title)
		assert.Equal(t, 90*time.Minute, saved.Duration())
		assert.Equal(t, "Session", booking.Title)

		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, entity.NotificationBookingUpdated, events[0].Type)
	})

	t.Run("RoomConflict", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		roomID := uuid.New()

		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
		f.validator.On("ValidateForUpdate", booking.ID, mock.Anything).
			Return(nil, &ValidationError{Rule: RuleRoomConflict, Err: ErrRoomConflict}).Once()

		_, err := f.usecase().UpdateBooking(context.Background(), therapistActor(therapistID), booking.ID, &dto.UpdateBookingRequest{RoomID: &roomID})

		requireRule(t, err, RuleRoomConflict)
		f.bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("OtherTherapistForbidden", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

		_, err := f.usecase().UpdateBooking(context.Background(), therapistActor(uuid.New()), booking.ID, &dto.UpdateBookingRequest{})
		assert.ErrorIs(t, err, ErrBookingForbidden)
	})
}

func TestBookingUsecase_SetBookingStatus(t *testing.T) {
	therapistID := uuid.New()

	t.Run("PendingToConfirmed", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
		f.bookingRepo.On("UpdateStatus", mock.Anything, booking.ID, []entity.BookingStatus{entity.BookingStatusPending}, entity.BookingStatusConfirmed).
			Return(int64(1), nil).Once()

		resp, err := f.usecase().SetBookingStatus(context.Background(), therapistActor(therapistID), booking.ID, &dto.UpdateBookingStatusRequest{Status: "confirmed"})

		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Status)
		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, entity.NotificationBookingUpdated, events[0].Type)
	})

	t.Run("CancelledKeepsRowAndNotifies", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		booking.Status = entity.BookingStatusConfirmed
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
		f.bookingRepo.On("UpdateStatus", mock.Anything, booking.ID, []entity.BookingStatus{entity.BookingStatusConfirmed}, entity.BookingStatusCancelled).
			Return(int64(1), nil).Once()

		_, err := f.usecase().SetBookingStatus(context.Background(), adminActor(), booking.ID, &dto.UpdateBookingStatusRequest{Status: "CANCELLED"})

		require.NoError(t, err)
		f.bookingRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, entity.NotificationBookingCancelled, events[0].Type)
		assert.Nil(t, events[0].Snapshot)
	})

	t.Run("BackwardsTransitionRejected", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, false)
		booking.Status = entity.BookingStatusConfirmed
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

		_, err := f.usecase().SetBookingStatus(context.Background(), adminActor(), booking.ID, &dto.UpdateBookingStatusRequest{Status: "PENDING"})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("SameStatusIsNoop", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

		_, err := f.usecase().SetBookingStatus(context.Background(), adminActor(), booking.ID, &dto.UpdateBookingStatusRequest{Status: "PENDING"})
		require.NoError(t, err)
		f.bookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("ConcurrentChangeRejected", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, false)
		f.bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
		f.bookingRepo.On("UpdateStatus", mock.Anything, booking.ID, mock.Anything, mock.Anything).Return(int64(0), nil).Once()

		_, err := f.usecase().SetBookingStatus(context.Background(), adminActor(), booking.ID, &dto.UpdateBookingStatusRequest{Status: "CONFIRMED"})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.usecase().SetBookingStatus(context.Background(), adminActor(), uuid.New(), &dto.UpdateBookingStatusRequest{Status: "DONE"})
		assert.ErrorIs(t, err, ErrInvalidBookingStatus)
	})
}

func TestBookingUsecase_CancelBooking(t *testing.T) {
	therapistID := uuid.New()

	t.Run("DetachesRecordAndDeletes", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()
		f.medicalRecordRepo.On("ClearBookingReference", mock.Anything, booking.ID).Return(int64(1), nil).Once()
		f.bookingRepo.On("Delete", mock.Anything, booking.ID).Return(int64(1), nil).Once()

		err := f.usecase().CancelBooking(context.Background(), therapistActor(therapistID), booking.ID)

		require.NoError(t, err)
		f.medicalRecordRepo.AssertExpectations(t)
		f.bookingRepo.AssertExpectations(t)

		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, entity.NotificationBookingCancelled, events[0].Type)
		require.NotNil(t, events[0].Snapshot)
		assert.Equal(t, "Joao", events[0].Snapshot.ClientName)
		assert.Len(t, events[0].Snapshot.GuardianIDs, 1)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		booking.Status = entity.BookingStatusCancelled
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

		err := f.usecase().CancelBooking(context.Background(), adminActor(), booking.ID)
		assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		booking.StartTime = testNow.Add(-time.Minute)
		booking.EndTime = testNow.Add(time.Hour)
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

		err := f.usecase().CancelBooking(context.Background(), adminActor(), booking.ID)
		assert.ErrorIs(t, err, ErrCannotCancelPast)
	})

	t.Run("OtherTherapistForbidden", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, true)
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()

		err := f.usecase().CancelBooking(context.Background(), therapistActor(uuid.New()), booking.ID)
		assert.ErrorIs(t, err, ErrBookingForbidden)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newBookingFixture()
		id := uuid.New()
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, id).Return(nil, nil).Once()

		err := f.usecase().CancelBooking(context.Background(), adminActor(), id)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("DeletedConcurrently", func(t *testing.T) {
		f := newBookingFixture()
		booking := futureBooking(therapistID, false)
		f.bookingRepo.On("FindByIDWithParticipants", mock.Anything, booking.ID).Return(booking, nil).Once()
		f.medicalRecordRepo.On("ClearBookingReference", mock.Anything, booking.ID).Return(int64(0), nil).Once()
		f.bookingRepo.On("Delete", mock.Anything, booking.ID).Return(int64(0), nil).Once()

		err := f.usecase().CancelBooking(context.Background(), adminActor(), booking.ID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
