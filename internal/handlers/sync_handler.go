package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/sync"
)

// SyncHandler handles synchronization endpoints
type SyncHandler struct {
	service *sync.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service *sync.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// SyncField pushes one changed field to both stores
// @Summary Sync a single field
// @Description Writes the field locally and pushes it to the cloud record. Rejected while another sync operation is running.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.SyncFieldRequest true "Field to sync"
// @Success 200 {object} models.SyncResult "Sync outcome"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.SyncResult "Another sync operation is in progress"
// @Security ApiKeyAuth
// @Router /api/sync/field [post]
func (h *SyncHandler) SyncField(w http.ResponseWriter, r *http.Request) {
	var req models.SyncFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ProfileID == 0 || req.Field == "" {
		h.respondError(w, http.StatusBadRequest, "profileId and field are required.")
		return
	}

	result := h.service.SyncField(r.Context(), req.ProfileID, req.Field, req.Value)
	h.respondResult(w, result)
}

// Reconcile runs a full reconciliation pass for a profile
// @Summary Reconcile a profile
// @Description Diffs every mapped field between the local and cloud copies and applies all non-conflicting changes. Conflicted fields are reported untouched.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.ReconcileRequest true "Profile to reconcile"
// @Success 200 {object} models.SyncResult "Reconciliation outcome"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.SyncResult "Another sync operation is in progress"
// @Security ApiKeyAuth
// @Router /api/sync/reconcile [post]
func (h *SyncHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req models.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ProfileID == 0 {
		h.respondError(w, http.StatusBadRequest, "profileId is required.")
		return
	}

	result := h.service.Reconcile(r.Context(), req.ProfileID)
	h.respondResult(w, result)
}

// Resolve applies caller decisions for conflicted fields
// @Summary Resolve conflicts
// @Description Applies a local/remote/merge decision per conflicted field. Decisions are independent; one failure does not block the rest.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.ResolveRequest true "Resolution decisions"
// @Success 200 {object} models.SyncResult "Resolution outcome"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Security ApiKeyAuth
// @Router /api/sync/resolve [post]
func (h *SyncHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ProfileID == 0 || len(req.Decisions) == 0 {
		h.respondError(w, http.StatusBadRequest, "profileId and decisions are required.")
		return
	}

	result := h.service.Resolve(r.Context(), req.ProfileID, req.Decisions)
	h.respondResult(w, result)
}

// InitialSync creates the cloud record for a profile
// @Summary Initial sync
// @Description Inserts the profile into the cloud store and records the remote association. Failures are queued for retry.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.InitialSyncRequest true "Profile to sync"
// @Success 200 {object} models.SyncResult "Initial sync outcome"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.SyncResult "Another sync operation is in progress"
// @Security ApiKeyAuth
// @Router /api/sync/initial [post]
func (h *SyncHandler) InitialSync(w http.ResponseWriter, r *http.Request) {
	var req models.InitialSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ProfileID == 0 {
		h.respondError(w, http.StatusBadRequest, "profileId is required.")
		return
	}

	result := h.service.EnsureRemote(r.Context(), req.ProfileID)
	h.respondResult(w, result)
}

// Retry retries all queued initial syncs
// @Summary Retry pending syncs
// @Description Retries every profile in the pending-sync queue.
// @Tags sync
// @Produce json
// @Success 200 {object} models.RetryResponse "Retry counts"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/sync/retry [post]
func (h *SyncHandler) Retry(w http.ResponseWriter, r *http.Request) {
	retried, remaining, err := h.service.RetryPending(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to read pending queue.")
		return
	}
	h.respondJSON(w, http.StatusOK, models.RetryResponse{Retried: retried, Remaining: remaining})
}

// StartRealtime subscribes to cloud changes for a profile
// @Summary Start real-time sync
// @Description Subscribes to the cloud change stream and mirrors remote edits into the local store.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.RealtimeRequest true "Profile to watch"
// @Success 200 {object} models.SyncStatus "Current sync status"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 502 {object} models.ErrorResponse "Subscription failed"
// @Security ApiKeyAuth
// @Router /api/sync/realtime/start [post]
func (h *SyncHandler) StartRealtime(w http.ResponseWriter, r *http.Request) {
	var req models.RealtimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ProfileID == 0 {
		h.respondError(w, http.StatusBadRequest, "profileId is required.")
		return
	}

	if err := h.service.StartRealTime(r.Context(), req.ProfileID); err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.service.Status(r.Context()))
}

// StopRealtime tears down the active subscription
// @Summary Stop real-time sync
// @Description Stops the cloud change subscription. Safe to call when none is active.
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncStatus "Current sync status"
// @Security ApiKeyAuth
// @Router /api/sync/realtime/stop [post]
func (h *SyncHandler) StopRealtime(w http.ResponseWriter, r *http.Request) {
	h.service.StopRealTime()
	h.respondJSON(w, http.StatusOK, h.service.Status(r.Context()))
}

// ClearData removes all sync bookkeeping for a profile
// @Summary Clear sync data
// @Description Deletes field timestamps, the remote association and any pending retry for a profile. The profile itself is untouched.
// @Tags sync
// @Produce json
// @Param profileId path int true "Local profile id"
// @Success 204 "Sync data cleared"
// @Failure 400 {object} models.ErrorResponse "Invalid profile id"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/sync/data/{profileId} [delete]
func (h *SyncHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	profileID, err := strconv.ParseInt(chi.URLParam(r, "profileId"), 10, 64)
	if err != nil || profileID == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid profile id.")
		return
	}

	if err := h.service.ClearSyncData(r.Context(), profileID); err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to clear sync data.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status reports a snapshot of the sync service
// @Summary Sync status
// @Description Reports whether a sync is running, whether real-time sync is active, and the pending retry depth.
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncStatus "Current sync status"
// @Security ApiKeyAuth
// @Router /api/sync/status [get]
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Status(r.Context()))
}

// respondResult writes a SyncResult, using 409 for busy rejections so
// callers can tell "try again" apart from a failed sync.
func (h *SyncHandler) respondResult(w http.ResponseWriter, result models.SyncResult) {
	status := http.StatusOK
	if result.Error == models.ErrSyncBusy.Error() {
		status = http.StatusConflict
	}
	h.respondJSON(w, status, result)
}

func (h *SyncHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *SyncHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
