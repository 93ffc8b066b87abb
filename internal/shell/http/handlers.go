package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"jobwatch/internal/core/domain"
	"jobwatch/internal/core/usecases"
)

type WatchHandler struct {
	watchService *usecases.WatchService
}

func NewWatchHandler(watchService *usecases.WatchService) *WatchHandler {
	return &WatchHandler{
		watchService: watchService,
	}
}

func (h *WatchHandler) CreateWatch(w http.ResponseWriter, r *http.Request) {
	log.Printf("[DEBUG] HTTP CreateWatch called - method: %s, path: %s", r.Method, r.URL.Path)

	var req struct {
		Name         string   `json:"name"`
		OperationID  string   `json:"operation_id"`
		Recipients   []string `json:"recipients"`
		NotifyStates []string `json:"notify_states"`
		Schedule     string   `json:"schedule"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[DEBUG] HTTP CreateWatch failed - JSON decode error: %v", err)
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidJSON(err)})
		return
	}

	if req.Name == "" || req.OperationID == "" || req.Schedule == "" {
		log.Printf("[DEBUG] HTTP CreateWatch failed - missing required fields")
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorMissingFields()})
		return
	}

	watch, err := h.watchService.CreateWatch(req.Name, req.OperationID, req.Recipients, req.NotifyStates, req.Schedule)
	if err != nil {
		h.respondWatchError(w, err, "")
		return
	}

	log.Printf("[DEBUG] HTTP CreateWatch success - watch created with ID: %s", watch.ID)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/watches/"+watch.ID)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) GetAllWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.watchService.ListWatches()
	if err != nil {
		log.Printf("[DEBUG] HTTP GetAllWatches failed - %v", err)
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" {
		filtered := watches[:0]
		for _, watch := range watches {
			if string(watch.Status) == statusFilter {
				filtered = append(filtered, watch)
			}
		}
		watches = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponseList(watches, h.watchService))
}

func (h *WatchHandler) GetWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	watch, err := h.watchService.GetWatch(id)
	if err != nil {
		h.respondWatchError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) UpdateWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Name         string   `json:"name"`
		OperationID  string   `json:"operation_id"`
		Recipients   []string `json:"recipients"`
		NotifyStates []string `json:"notify_states"`
		Schedule     string   `json:"schedule"`
		Status       string   `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidJSON(err)})
		return
	}

	if req.Name == "" || req.OperationID == "" || req.Schedule == "" || req.Status == "" {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorMissingFields()})
		return
	}

	watch, err := h.watchService.UpdateWatch(id, req.Name, req.OperationID, req.Recipients, req.NotifyStates, req.Schedule, req.Status)
	if err != nil {
		h.respondWatchError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.watchService.DeleteWatch(id); err != nil {
		h.respondWatchError(w, err, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchHandler) RunWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.watchService.RunWatch(id); err != nil {
		if errors.Is(err, domain.ErrWatchNotFound) {
			respondWithErrors(w, http.StatusNotFound, []ErrorObject{errorNotFound("watch", id)})
			return
		}
		// The run itself failed; the outcome is recorded on the watch
		log.Printf("[DEBUG] HTTP RunWatch - watch %s run failed: %v", id, err)
	}

	watch, err := h.watchService.GetWatch(id)
	if err != nil {
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) PauseWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	watch, err := h.watchService.PauseWatch(id)
	if err != nil {
		h.respondWatchError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) ResumeWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	watch, err := h.watchService.ResumeWatch(id)
	if err != nil {
		h.respondWatchError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToWatchResponse(watch, h.watchService))
}

func (h *WatchHandler) respondWatchError(w http.ResponseWriter, err error, id string) {
	var unknownState *domain.UnknownStateError

	switch {
	case errors.Is(err, domain.ErrWatchNotFound):
		respondWithErrors(w, http.StatusNotFound, []ErrorObject{errorNotFound("watch", id)})
	case errors.Is(err, domain.ErrInvalidSchedule):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("schedule", "not a valid cron expression")})
	case errors.Is(err, domain.ErrInvalidRecipients):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("recipients", "at least one recipient is required")})
	case errors.Is(err, domain.ErrInvalidOperationID):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("operation_id", "must not be empty")})
	case errors.Is(err, domain.ErrInvalidStatus):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("status", "must be scheduled, paused or failed")})
	case errors.As(err, &unknownState):
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("notify_states", unknownState.Error())})
	case errors.Is(err, domain.ErrWatchAlreadyPaused):
		respondWithErrors(w, http.StatusConflict, []ErrorObject{errorConflict("The watch is already paused")})
	case errors.Is(err, domain.ErrWatchNotPaused):
		respondWithErrors(w, http.StatusConflict, []ErrorObject{errorConflict("The watch is not paused")})
	default:
		log.Printf("[DEBUG] HTTP watch handler - internal error: %v", err)
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
	}
}
