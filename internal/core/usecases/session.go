package usecases

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobwatch/internal/core/domain"
)

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionSucceeded SessionStatus = "succeeded"
	SessionFailed    SessionStatus = "failed"
)

// Session is one monitoring run tracked by the registry. Sessions live only
// in memory; a restart forgets them.
type Session struct {
	ID          string            `json:"id"`
	OperationID string            `json:"operation_id"`
	Status      SessionStatus     `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	Log         domain.MonitorLog `json:"log"`
	Error       string            `json:"error,omitempty"`
}

// SessionRegistry starts monitor sessions asynchronously and keeps their
// state queryable while the process lives. Each session runs in its own
// goroutine; sessions share nothing but the registry map.
type SessionRegistry struct {
	monitor  *Monitor
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry(monitor *Monitor) *SessionRegistry {
	return &SessionRegistry{
		monitor:  monitor,
		sessions: make(map[string]*Session),
	}
}

// Start launches a monitoring session in the background and returns its
// initial snapshot.
func (r *SessionRegistry) Start(operationID string, opts MonitorOptions) Session {
	session := &Session{
		ID:          uuid.New().String(),
		OperationID: operationID,
		Status:      SessionRunning,
		StartedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	snapshot := *session
	r.mu.Unlock()

	log.Printf("Started monitor session %s for operation %s", session.ID, operationID)

	go func() {
		monitorLog, err := r.monitor.Run(context.Background(), operationID, opts)
		finished := time.Now().UTC()

		r.mu.Lock()
		defer r.mu.Unlock()
		session.Log = monitorLog
		session.FinishedAt = &finished
		if err != nil {
			session.Status = SessionFailed
			session.Error = err.Error()
			log.Printf("Monitor session %s failed: %v", session.ID, err)
		} else {
			session.Status = SessionSucceeded
			log.Printf("Monitor session %s finished with %d notification(s)", session.ID, len(monitorLog))
		}
	}()

	return snapshot
}

// Get returns a point-in-time copy of the session
func (r *SessionRegistry) Get(id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}

	snapshot := *session
	snapshot.Log = append(domain.MonitorLog(nil), session.Log...)
	return snapshot, nil
}

// List returns copies of all sessions ordered by start time
func (r *SessionRegistry) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		snapshot := *session
		snapshot.Log = append(domain.MonitorLog(nil), session.Log...)
		sessions = append(sessions, snapshot)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions
}
