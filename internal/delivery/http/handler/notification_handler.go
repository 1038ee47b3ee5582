package handler

import (
	"net/http"
	"strconv"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
	}
}

// GetMyNotifications returns the guardian's inbox; ?unread=true hides read items.
func (h *NotificationHandler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "unread must be true or false")
			return
		}
		unreadOnly = parsed
	}

	notifications, err := h.notificationUsecase.GetMyNotifications(r.Context(), actor, unreadOnly)
	if err != nil {
		if err == usecase.ErrGuardianNotFound {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get notifications")
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	notificationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	err = h.notificationUsecase.MarkAsRead(r.Context(), actor, notificationID)
	if err != nil {
		switch err {
		case usecase.ErrGuardianNotFound:
			response.NotFound(w, err.Error())
		case usecase.ErrNotificationNotFound:
			response.NotFound(w, "Notification not found")
		default:
			response.InternalServerError(w, "Failed to mark notification as read")
		}
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

// SweepReminders runs the day-before reminder sweep on demand.
func (h *NotificationHandler) SweepReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.notificationUsecase.SweepReminders(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to send reminders")
		return
	}

	response.Success(w, http.StatusOK, "Reminders sent successfully", result)
}
