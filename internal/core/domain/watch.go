package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type WatchStatus string

const (
	WatchScheduled WatchStatus = "scheduled"
	WatchPaused    WatchStatus = "paused"
	WatchFailed    WatchStatus = "failed"
)

type Schedule string

const (
	Schedule10Minutes Schedule = "*/10 * * * *" // Every 10 minutes
	Schedule1Hour     Schedule = "0 * * * *"    // Every hour at minute 0
	Schedule1Day      Schedule = "0 0 * * *"    // Every day at midnight
)

// Watch is a persisted monitoring definition: which operation to watch on a
// schedule, who gets notified, and for which states. Watches are
// configuration; the logs their sessions produce are never stored.
type Watch struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	OperationID  string      `json:"operation_id"`
	Recipients   []string    `json:"recipients"`
	NotifyStates StateSet    `json:"notify_states,omitempty"`
	Schedule     Schedule    `json:"schedule"`
	Status       WatchStatus `json:"status"`
	LastRun      *time.Time  `json:"last_run,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func NewWatch(name, operationID string, recipients []string, notifyStates StateSet, schedule Schedule) Watch {
	return Watch{
		ID:           uuid.New().String(),
		Name:         name,
		OperationID:  operationID,
		Recipients:   recipients,
		NotifyStates: notifyStates,
		Schedule:     schedule,
		Status:       WatchScheduled,
		LastRun:      nil,
		CreatedAt:    time.Now().UTC(),
	}
}

func (w Watch) WithStatus(status WatchStatus) Watch {
	updated := w
	updated.Status = status
	return updated
}

func (w Watch) WithLastRun(lastRun time.Time) Watch {
	updated := w
	updated.LastRun = &lastRun
	return updated
}

func (w Watch) ToJSON() ([]byte, error) {
	return json.Marshal(w)
}

func WatchFromJSON(data []byte) (Watch, error) {
	var watch Watch
	err := json.Unmarshal(data, &watch)
	return watch, err
}

func IsValidSchedule(s string) bool {
	// Check if it's one of our predefined schedules
	switch Schedule(s) {
	case Schedule10Minutes, Schedule1Hour, Schedule1Day:
		return true
	}

	// If not predefined, validate as a standard 5-field cron expression (minute hour dom month dow)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(s)
	return err == nil
}

func IsValidWatchStatus(s string) bool {
	switch WatchStatus(s) {
	case WatchScheduled, WatchPaused, WatchFailed:
		return true
	default:
		return false
	}
}
