package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func NotificationToResponse(n *entity.Notification) *dto.NotificationResponse {
	if n == nil {
		return nil
	}

	return &dto.NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Priority:    string(n.Priority),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		BookingID:   n.BookingID,
		ClientID:    n.ClientID,
		TherapistID: n.TherapistID,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
	}
}

// NotificationsToResponse builds the inbox listing with its unread count.
func NotificationsToResponse(notifications []entity.Notification) *dto.NotificationListResponse {
	response := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, len(notifications)),
		Total:         len(notifications),
	}
	for i := range notifications {
		response.Notifications[i] = *NotificationToResponse(&notifications[i])
		if !notifications[i].IsRead {
			response.Unread++
		}
	}
	return response
}
