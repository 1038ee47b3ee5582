package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO.
// Room, Therapist and Client summaries are included when preloaded.
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:          booking.ID,
		Title:       booking.Title,
		Description: booking.Description,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Status:      string(booking.Status),
		RoomID:      booking.RoomID,
		TherapistID: booking.TherapistID,
		ClientID:    booking.ClientID,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}

	if booking.Room != nil {
		response.Room = &dto.BookingRoomSummary{ID: booking.Room.ID, Name: booking.Room.Name}
	}
	if booking.Therapist != nil {
		response.Therapist = &dto.BookingPersonSummary{ID: booking.Therapist.ID, FullName: booking.Therapist.FullName}
	}
	if booking.Client != nil {
		response.Client = &dto.BookingPersonSummary{ID: booking.Client.ID, FullName: booking.Client.FullName}
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
