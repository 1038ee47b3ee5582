package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateRoomRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Capacity    int      `json:"capacity" validate:"required,min=1"`
	Resources   []string `json:"resources" validate:"omitempty,dive,required"`
	OpeningTime *string  `json:"opening_time" validate:"omitempty,hhmm"`
	ClosingTime *string  `json:"closing_time" validate:"omitempty,hhmm"`
	Description *string  `json:"description" validate:"omitempty"`
}

type UpdateRoomRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=1"`
	Resources   *[]string `json:"resources" validate:"omitempty"`
	OpeningTime *string   `json:"opening_time" validate:"omitempty,hhmm"`
	ClosingTime *string   `json:"closing_time" validate:"omitempty,hhmm"`
	Description *string   `json:"description" validate:"omitempty"`
}

// Response DTOs

type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Resources   []string  `json:"resources"`
	OpeningTime *string   `json:"opening_time,omitempty"`
	ClosingTime *string   `json:"closing_time,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}
