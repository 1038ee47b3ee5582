package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditLogUsecase_GetAllAuditLogs(t *testing.T) {
	t.Run("DefaultsPaging", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("FindAll", mock.Anything, entity.AuditLogFilter{Entity: "booking", Page: 1, Limit: defaultAuditPageSize}).
			Return([]entity.AuditLog{{ID: 2, Action: entity.AuditActionBookingCreate}, {ID: 1}}, int64(2), nil).Once()

		resp, err := NewAuditLogUsecase(&mocks.Transactor{}, testLogger(), repo).
			GetAllAuditLogs(context.Background(), &dto.AuditLogQuery{Entity: "booking"})

		require.NoError(t, err)
		assert.Len(t, resp.Logs, 2)
		assert.Equal(t, int64(2), resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, resp.TotalPages())
		repo.AssertExpectations(t)
	})

	t.Run("ClampsLimit", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f entity.AuditLogFilter) bool {
			return f.Limit == maxAuditPageSize && f.Page == 3 && f.Offset() == 2*maxAuditPageSize
		})).Return([]entity.AuditLog{}, int64(250), nil).Once()

		resp, err := NewAuditLogUsecase(&mocks.Transactor{}, testLogger(), repo).
			GetAllAuditLogs(context.Background(), &dto.AuditLogQuery{Page: 3, Limit: 1000})

		require.NoError(t, err)
		assert.Equal(t, 3, resp.TotalPages())
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(mocks.AuditLogRepository)
		repo.On("FindAll", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db down")).Once()

		_, err := NewAuditLogUsecase(&mocks.Transactor{}, testLogger(), repo).
			GetAllAuditLogs(context.Background(), &dto.AuditLogQuery{})
		assert.Error(t, err)
	})
}

func TestAuditLogUsecase_GetAuditLog(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	repo.On("FindByID", mock.Anything, int64(7)).Return(&entity.AuditLog{ID: 7}, nil).Once()
	repo.On("FindByID", mock.Anything, int64(8)).Return(nil, nil).Once()
	u := NewAuditLogUsecase(&mocks.Transactor{}, testLogger(), repo)

	resp, err := u.GetAuditLog(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Nil(t, resp.User)

	_, err = u.GetAuditLog(context.Background(), 8)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
