package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// TherapistProfileToResponse converts a TherapistProfile entity to TherapistResponse DTO
func TherapistProfileToResponse(profile *entity.TherapistProfile) *dto.TherapistResponse {
	if profile == nil {
		return nil
	}

	return &dto.TherapistResponse{
		ID:             profile.UserID,
		Email:          profile.User.Email,
		FullName:       profile.User.FullName,
		LicenseNumber:  profile.LicenseNumber,
		Specialization: profile.Specialization,
		Biography:      profile.Biography,
		IsActive:       profile.User.IsActive,
	}
}

func TherapistProfilesToResponses(profiles []entity.TherapistProfile) []dto.TherapistResponse {
	responses := make([]dto.TherapistResponse, len(profiles))
	for i := range profiles {
		responses[i] = *TherapistProfileToResponse(&profiles[i])
	}
	return responses
}
