package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// ClientToResponse converts a Client entity to ClientResponse DTO, including
// guardians and relationships when preloaded.
func ClientToResponse(client *entity.Client) *dto.ClientResponse {
	if client == nil {
		return nil
	}

	response := &dto.ClientResponse{
		ID:        client.ID,
		FullName:  client.FullName,
		Notes:     client.Notes,
		Guardians: make([]dto.GuardianResponse, 0, len(client.Guardians)),
		CreatedAt: client.CreatedAt,
	}

	if client.DateOfBirth != nil {
		dob := client.DateOfBirth.Format(dateLayout)
		response.DateOfBirth = &dob
	}

	for i := range client.Guardians {
		response.Guardians = append(response.Guardians, *GuardianToResponse(&client.Guardians[i]))
	}
	for i := range client.Relationships {
		response.Relationships = append(response.Relationships, *RelationshipToResponse(&client.Relationships[i]))
	}

	return response
}

func ClientsToResponses(clients []entity.Client) []dto.ClientResponse {
	responses := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *ClientToResponse(&clients[i])
	}
	return responses
}

func GuardianToResponse(guardian *entity.Guardian) *dto.GuardianResponse {
	if guardian == nil {
		return nil
	}

	return &dto.GuardianResponse{
		ID:       guardian.ID,
		UserID:   guardian.UserID,
		FullName: guardian.FullName,
		Email:    guardian.Email,
		Phone:    guardian.Phone,
	}
}

func RelationshipToResponse(relationship *entity.ClientTherapist) *dto.RelationshipResponse {
	if relationship == nil {
		return nil
	}

	response := &dto.RelationshipResponse{
		ID:          relationship.ID,
		ClientID:    relationship.ClientID,
		TherapistID: relationship.TherapistID,
		IsPrimary:   relationship.IsPrimary,
		StartDate:   relationship.StartDate.Format(dateLayout),
		Active:      relationship.IsActive(),
	}
	if relationship.EndDate != nil {
		end := relationship.EndDate.Format(dateLayout)
		response.EndDate = &end
	}

	return response
}
