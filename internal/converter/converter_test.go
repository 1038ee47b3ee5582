package converter

import (
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingToResponse_IncludesLoadedParticipants(t *testing.T) {
	clientID := uuid.New()
	booking := &entity.Booking{
		ID:          uuid.New(),
		Title:       "Assessment",
		StartTime:   time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2030, 1, 1, 11, 0, 0, 0, time.UTC),
		Status:      entity.BookingStatusPending,
		RoomID:      uuid.New(),
		TherapistID: uuid.New(),
		ClientID:    &clientID,
		Room:        &entity.Room{Name: "Sala 1"},
		Client:      &entity.Client{ID: clientID, FullName: "Joao"},
	}

	resp := BookingToResponse(booking)
	require.NotNil(t, resp)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "Sala 1", resp.Room.Name)
	assert.Equal(t, "Joao", resp.Client.FullName)
	assert.Nil(t, resp.Therapist)
	assert.Nil(t, BookingToResponse(nil))
}

func TestUserToResponse_RoleFallsBackToID(t *testing.T) {
	resp := UserToResponse(&entity.User{RoleID: entity.RoleIDTherapist})
	assert.Equal(t, entity.RoleTherapist, resp.Role)
}

func TestAuditLogToResponse_SystemEntryHasNoUser(t *testing.T) {
	resp := AuditLogToResponse(&entity.AuditLog{ID: 7, Action: entity.AuditActionAdminSeed})
	assert.Nil(t, resp.User)
	assert.Equal(t, int64(7), resp.ID)
}

func TestNotificationsToResponse_CountsUnread(t *testing.T) {
	resp := NotificationsToResponse([]entity.Notification{
		{IsRead: true},
		{IsRead: false},
		{IsRead: false},
	})
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Unread)
}

func TestRelationshipToResponse(t *testing.T) {
	end := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)
	resp := RelationshipToResponse(&entity.ClientTherapist{
		StartDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
	})
	assert.Equal(t, "2030-01-01", resp.StartDate)
	assert.Equal(t, "2030-02-01", *resp.EndDate)
	assert.False(t, resp.Active)
}
