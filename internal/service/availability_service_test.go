package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAvailabilityChecker_HasConflict(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	start := time.Date(2030, 3, 4, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("Free", func(t *testing.T) {
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, entity.AxisRoom, roomID, start, end, (*uuid.UUID)(nil)).
			Return(nil, nil).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeFailOpen)
		assert.False(t, checker.HasConflict(ctx, nil, entity.AxisRoom, roomID, start, end, nil))
		repo.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, entity.AxisTherapist, roomID, start, end, (*uuid.UUID)(nil)).
			Return(&entity.Booking{ID: uuid.New()}, nil).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeFailOpen)
		assert.True(t, checker.HasConflict(ctx, nil, entity.AxisTherapist, roomID, start, end, nil))
	})

	t.Run("ExcludeIDIsForwarded", func(t *testing.T) {
		self := uuid.New()
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, entity.AxisRoom, roomID, start, end, &self).
			Return(nil, nil).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeFailOpen)
		assert.False(t, checker.HasConflict(ctx, nil, entity.AxisRoom, roomID, start, end, &self))
		repo.AssertExpectations(t)
	})

	t.Run("ProbeErrorFailOpen", func(t *testing.T) {
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset")).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeFailOpen)
		assert.False(t, checker.HasConflict(ctx, nil, entity.AxisClient, roomID, start, end, nil))
	})

	t.Run("ProbeErrorFailClosed", func(t *testing.T) {
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset")).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeFailClosed)
		assert.True(t, checker.HasConflict(ctx, nil, entity.AxisClient, roomID, start, end, nil))
	})

	t.Run("UnknownPolicyDefaultsToFailOpen", func(t *testing.T) {
		repo := new(mocks.BookingRepository)
		repo.On("FindFirstOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout")).Once()

		checker := NewAvailabilityChecker(testLogger(), repo, ProbeErrorPolicy("retry"))
		assert.False(t, checker.HasConflict(ctx, nil, entity.AxisRoom, roomID, start, end, nil))
	})
}
