package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/repository"
)

// ProfileHandler handles local pet profile endpoints
type ProfileHandler struct {
	repo    repository.PetProfileRepo
	ownerID string
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(repo repository.PetProfileRepo, ownerID string) *ProfileHandler {
	return &ProfileHandler{repo: repo, ownerID: ownerID}
}

// Create stores a new local profile
// @Summary Create a pet profile
// @Description Creates a profile in the local store. It has no cloud record until an initial sync runs.
// @Tags profiles
// @Accept json
// @Produce json
// @Param profile body models.PetProfile true "Profile to create"
// @Success 201 {object} models.CreateProfileResponse "Assigned local id"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/profiles [post]
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var profile models.PetProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if profile.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required.")
		return
	}
	profile.OwnerID = h.ownerID

	id, err := h.repo.Create(r.Context(), &profile)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to create profile.")
		return
	}
	h.respondJSON(w, http.StatusCreated, models.CreateProfileResponse{ID: id})
}

// GetByID returns one local profile
// @Summary Get a pet profile
// @Description Returns the local copy of a profile.
// @Tags profiles
// @Produce json
// @Param id path int true "Local profile id"
// @Success 200 {object} models.PetProfile "The profile"
// @Failure 400 {object} models.ErrorResponse "Invalid profile id"
// @Failure 404 {object} models.ErrorResponse "Profile not found"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/profiles/{id} [get]
func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid profile id.")
		return
	}

	profile, err := h.repo.GetByID(r.Context(), id, h.ownerID)
	if errors.Is(err, models.ErrProfileNotFound) {
		h.respondError(w, http.StatusNotFound, "Profile not found.")
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}
	h.respondJSON(w, http.StatusOK, profile)
}

// Update applies a partial field update to a local profile without syncing
// @Summary Update a pet profile locally
// @Description Applies a partial field map to the local copy only. Use the sync endpoints to propagate changes.
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path int true "Local profile id"
// @Param fields body object true "Partial field map keyed by local field name"
// @Success 200 {object} models.PetProfile "The updated profile"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Profile not found"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/profiles/{id} [patch]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid profile id.")
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(fields) == 0 {
		h.respondError(w, http.StatusBadRequest, "At least one field is required.")
		return
	}

	err = h.repo.Update(r.Context(), id, fields, h.ownerID)
	if errors.Is(err, models.ErrProfileNotFound) {
		h.respondError(w, http.StatusNotFound, "Profile not found.")
		return
	}
	if errors.Is(err, models.ErrUnknownField) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}

	profile, err := h.repo.GetByID(r.Context(), id, h.ownerID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}
	h.respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *ProfileHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
