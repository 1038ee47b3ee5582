package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// The role name falls back to the role id when Role is not preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleNameByID(user.RoleID)
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.TherapistProfile != nil {
		response.TherapistProfile = &dto.TherapistProfileResponse{
			LicenseNumber:  user.TherapistProfile.LicenseNumber,
			Specialization: user.TherapistProfile.Specialization,
			Biography:      user.TherapistProfile.Biography,
		}
	}

	return response
}
