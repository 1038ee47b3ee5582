package handler

import (
	"encoding/json"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ClientHandler struct {
	clientUsecase usecase.ClientUsecase
	validator     *validator.CustomValidator
}

func NewClientHandler(clientUsecase usecase.ClientUsecase, validator *validator.CustomValidator) *ClientHandler {
	return &ClientHandler{
		clientUsecase: clientUsecase,
		validator:     validator,
	}
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	client, err := h.clientUsecase.CreateClient(r.Context(), actor, &req)
	if err != nil {
		if err == usecase.ErrInvalidDate {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to create client")
		return
	}

	response.Success(w, http.StatusCreated, "Client created successfully", client)
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	client, err := h.clientUsecase.GetClient(r.Context(), clientID)
	if err != nil {
		if err == usecase.ErrClientNotFound {
			response.NotFound(w, "Client not found")
			return
		}
		response.InternalServerError(w, "Failed to get client")
		return
	}

	response.Success(w, http.StatusOK, "Client retrieved successfully", client)
}

func (h *ClientHandler) GetAllClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientUsecase.GetAllClients(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get clients")
		return
	}

	response.Success(w, http.StatusOK, "Clients retrieved successfully", clients)
}

func (h *ClientHandler) AddGuardian(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	clientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	var req dto.CreateGuardianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	guardian, err := h.clientUsecase.AddGuardian(r.Context(), actor, clientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrClientNotFound:
			response.NotFound(w, "Client not found")
		case usecase.ErrGuardianUserNotFound:
			response.BadRequest(w, err.Error())
		case usecase.ErrGuardianUserTaken:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to add guardian")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Guardian added successfully", guardian)
}

func (h *ClientHandler) LinkTherapist(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	clientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	var req dto.LinkTherapistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	relationship, err := h.clientUsecase.LinkTherapist(r.Context(), actor, clientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrClientNotFound:
			response.NotFound(w, "Client not found")
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist not found")
		case usecase.ErrRelationshipExists:
			response.Conflict(w, err.Error())
		case usecase.ErrInvalidDate:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to link therapist")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Therapist linked successfully", relationship)
}

func (h *ClientHandler) EndRelationship(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	clientID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}
	relationshipID, err := uuid.Parse(vars["relationshipId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid relationship ID", nil)
		return
	}

	err = h.clientUsecase.EndRelationship(r.Context(), actor, clientID, relationshipID)
	if err != nil {
		switch err {
		case usecase.ErrRelationshipNotFound:
			response.NotFound(w, "Relationship not found")
		case usecase.ErrRelationshipEnded:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to end relationship")
		}
		return
	}

	response.Success(w, http.StatusOK, "Relationship ended successfully", nil)
}
