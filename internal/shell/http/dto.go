package http

import (
	"time"

	"jobwatch/internal/core/domain"
	"jobwatch/internal/core/usecases"
)

// WatchResponse is the API response model for Watch objects
type WatchResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	OperationID  string     `json:"operation_id"`
	Recipients   []string   `json:"recipients"`
	NotifyStates []string   `json:"notify_states,omitempty"`
	Schedule     string     `json:"schedule"`
	Status       string     `json:"status"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	NextRunAt    *time.Time `json:"next_run_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToWatchResponse converts a domain.Watch to a WatchResponse DTO.
// NextRunAt is computed from the schedule; paused watches have none.
func ToWatchResponse(watch domain.Watch, service *usecases.WatchService) WatchResponse {
	var notifyStates []string
	for _, state := range watch.NotifyStates {
		notifyStates = append(notifyStates, string(state))
	}

	var nextRunAt *time.Time
	if watch.Status != domain.WatchPaused {
		if next, err := service.NextRun(watch, time.Now().UTC()); err == nil {
			nextRunAt = &next
		}
	}

	return WatchResponse{
		ID:           watch.ID,
		Name:         watch.Name,
		OperationID:  watch.OperationID,
		Recipients:   watch.Recipients,
		NotifyStates: notifyStates,
		Schedule:     string(watch.Schedule),
		Status:       string(watch.Status),
		LastRun:      watch.LastRun,
		NextRunAt:    nextRunAt,
		CreatedAt:    watch.CreatedAt,
	}
}

// ToWatchResponseList converts a slice of domain.Watch to WatchResponse DTOs
func ToWatchResponseList(watches []domain.Watch, service *usecases.WatchService) []WatchResponse {
	responses := make([]WatchResponse, len(watches))
	for i, watch := range watches {
		responses[i] = ToWatchResponse(watch, service)
	}
	return responses
}

// SessionResponse is the API response model for monitor sessions
type SessionResponse struct {
	ID          string            `json:"id"`
	OperationID string            `json:"operation_id"`
	Status      string            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	Log         domain.MonitorLog `json:"log"`
	Error       string            `json:"error,omitempty"`
}

// ToSessionResponse converts a usecases.Session to a SessionResponse DTO
func ToSessionResponse(session usecases.Session) SessionResponse {
	log := session.Log
	if log == nil {
		log = domain.MonitorLog{}
	}

	return SessionResponse{
		ID:          session.ID,
		OperationID: session.OperationID,
		Status:      string(session.Status),
		StartedAt:   session.StartedAt,
		FinishedAt:  session.FinishedAt,
		Log:         log,
		Error:       session.Error,
	}
}
