package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jobwatch/internal/core/domain"
	"jobwatch/internal/core/usecases"
)

type MonitorHandler struct {
	registry *usecases.SessionRegistry
	defaults usecases.MonitorOptions
}

func NewMonitorHandler(registry *usecases.SessionRegistry, defaults usecases.MonitorOptions) *MonitorHandler {
	return &MonitorHandler{
		registry: registry,
		defaults: defaults,
	}
}

// StartMonitor launches a monitoring session for an operation and returns
// its initial snapshot. The session keeps running after the response.
func (h *MonitorHandler) StartMonitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperationID          string   `json:"operation_id"`
		Recipients           []string `json:"recipients"`
		NotifyStates         []string `json:"notify_states"`
		PollIntervalSeconds  int      `json:"poll_interval_seconds"`
		TimeoutSeconds       int      `json:"timeout_seconds"`
		RaiseTransportErrors bool     `json:"raise_transport_errors"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidJSON(err)})
		return
	}

	if req.OperationID == "" {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("operation_id", "must not be empty")})
		return
	}

	if len(req.Recipients) == 0 {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("recipients", "at least one recipient is required")})
		return
	}

	states, err := domain.ParseStateSet(req.NotifyStates)
	if err != nil {
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidField("notify_states", err.Error())})
		return
	}

	opts := h.defaults
	opts.Recipients = req.Recipients
	opts.NotifyStates = states
	opts.RaiseTransportErrors = req.RaiseTransportErrors
	if req.PollIntervalSeconds > 0 {
		opts.PollInterval = time.Duration(req.PollIntervalSeconds) * time.Second
	}
	if req.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	session := h.registry.Start(req.OperationID, opts)

	log.Printf("[DEBUG] HTTP StartMonitor - session %s started for operation %s", session.ID, req.OperationID)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/monitors/"+session.ID)
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(ToSessionResponse(session))
}

func (h *MonitorHandler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			respondWithErrors(w, http.StatusNotFound, []ErrorObject{errorNotFound("monitor session", id)})
			return
		}
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToSessionResponse(session))
}

func (h *MonitorHandler) GetAllMonitors(w http.ResponseWriter, r *http.Request) {
	sessions := h.registry.List()

	responses := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = ToSessionResponse(session)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
