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

type TherapistHandler struct {
	therapistUsecase usecase.TherapistUsecase
	validator        *validator.CustomValidator
}

func NewTherapistHandler(therapistUsecase usecase.TherapistUsecase, validator *validator.CustomValidator) *TherapistHandler {
	return &TherapistHandler{
		therapistUsecase: therapistUsecase,
		validator:        validator,
	}
}

func (h *TherapistHandler) CreateTherapist(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.CreateTherapistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	therapist, err := h.therapistUsecase.CreateTherapist(r.Context(), actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrTherapistEmailExists:
			response.Error(w, http.StatusConflict, "Email already exists", nil)
		case usecase.ErrTherapistLicenseExists:
			response.Error(w, http.StatusConflict, "License number already exists", nil)
		case usecase.ErrRoleNotFound:
			response.Error(w, http.StatusBadRequest, "Role not found", nil)
		default:
			response.InternalServerError(w, "Failed to create therapist")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Therapist created successfully", therapist)
}

func (h *TherapistHandler) GetTherapist(w http.ResponseWriter, r *http.Request) {
	therapistID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid therapist ID", nil)
		return
	}

	therapist, err := h.therapistUsecase.GetTherapist(r.Context(), therapistID)
	if err != nil {
		if err == usecase.ErrTherapistNotFound {
			response.NotFound(w, "Therapist not found")
			return
		}
		response.InternalServerError(w, "Failed to get therapist")
		return
	}

	response.Success(w, http.StatusOK, "Therapist retrieved successfully", therapist)
}

func (h *TherapistHandler) GetAllTherapists(w http.ResponseWriter, r *http.Request) {
	therapists, err := h.therapistUsecase.GetAllTherapists(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get therapists")
		return
	}

	response.Success(w, http.StatusOK, "Therapists retrieved successfully", therapists)
}

func (h *TherapistHandler) UpdateTherapist(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	therapistID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid therapist ID", nil)
		return
	}

	var req dto.UpdateTherapistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	therapist, err := h.therapistUsecase.UpdateTherapist(r.Context(), actor, therapistID, &req)
	if err != nil {
		switch err {
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist not found")
		case usecase.ErrTherapistEmailExists:
			response.Error(w, http.StatusConflict, "Email already exists", nil)
		case usecase.ErrTherapistLicenseExists:
			response.Error(w, http.StatusConflict, "License number already exists", nil)
		default:
			response.InternalServerError(w, "Failed to update therapist")
		}
		return
	}

	response.Success(w, http.StatusOK, "Therapist updated successfully", therapist)
}

func (h *TherapistHandler) DeleteTherapist(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	therapistID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid therapist ID", nil)
		return
	}

	err = h.therapistUsecase.DeleteTherapist(r.Context(), actor, therapistID)
	if err != nil {
		switch err {
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist not found")
		case usecase.ErrTherapistInUse:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to delete therapist")
		}
		return
	}

	response.Success(w, http.StatusOK, "Therapist deleted successfully", nil)
}
