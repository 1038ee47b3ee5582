package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func MedicalRecordToResponse(record *entity.MedicalRecord) *dto.MedicalRecordResponse {
	if record == nil {
		return nil
	}

	return &dto.MedicalRecordResponse{
		ID:          record.ID,
		ClientID:    record.ClientID,
		TherapistID: record.TherapistID,
		BookingID:   record.BookingID,
		SessionDate: record.SessionDate,
		Notes:       record.Notes,
		CreatedAt:   record.CreatedAt,
	}
}
