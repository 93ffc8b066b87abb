package scheduler

import (
	"context"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"jobwatch/internal/core/domain"
	"jobwatch/internal/core/usecases"
)

// CronScheduler fires watches on their cron schedules. Each firing runs one
// monitoring session through the watch service.
type CronScheduler struct {
	watchService *usecases.WatchService
	cron         *cron.Cron
	watchEntries map[string]cron.EntryID // watchID -> cronEntryID mapping
	mu           sync.RWMutex
}

func NewCronScheduler(watchService *usecases.WatchService) *CronScheduler {
	return &CronScheduler{
		watchService: watchService,
		cron:         cron.New(), // Standard 5-field format (minute hour dom month dow)
		watchEntries: make(map[string]cron.EntryID),
	}
}

func (s *CronScheduler) Start(ctx context.Context) {
	log.Println("Starting cron scheduler")

	// Load existing watches and schedule them
	s.loadAndScheduleAllWatches()

	s.cron.Start()

	<-ctx.Done()
	log.Println("Scheduler context cancelled, stopping")
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

// ScheduleWatch adds or updates a watch in the cron scheduler
func (s *CronScheduler) ScheduleWatch(watch domain.Watch) error {
	log.Printf("[DEBUG] CronScheduler.ScheduleWatch called - watch ID: %s, name: %s, schedule: %s, status: %s",
		watch.ID, watch.Name, watch.Schedule, watch.Status)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Remove existing entry if it exists
	if entryID, exists := s.watchEntries[watch.ID]; exists {
		log.Printf("[DEBUG] CronScheduler.ScheduleWatch - removing existing entry for watch: %s", watch.ID)
		s.cron.Remove(entryID)
		delete(s.watchEntries, watch.ID)
	}

	// Paused watches stay out of the schedule; a failed watch keeps firing
	// so a transient job service outage heals on its own
	if watch.Status == domain.WatchPaused {
		log.Printf("[DEBUG] CronScheduler.ScheduleWatch - watch is paused, skipping: %s", watch.ID)
		return nil
	}

	watchID := watch.ID
	watchFunc := func() {
		log.Printf("Firing watch: %s", watchID)

		// Get the latest definition from the repository
		current, err := s.watchService.GetWatch(watchID)
		if err != nil {
			log.Printf("Error getting watch %s for execution: %v", watchID, err)
			return
		}

		if current.Status == domain.WatchPaused {
			log.Printf("Watch %s is paused, skipping execution", watchID)
			return
		}

		WatchesCurrentlyRunning.Inc()
		defer WatchesCurrentlyRunning.Dec()

		if err := s.watchService.ExecuteScheduledWatch(current); err != nil {
			log.Printf("Error executing watch %s: %v", watchID, err)
			WatchExecutionsTotal.WithLabelValues("error").Inc()
			return
		}
		WatchExecutionsTotal.WithLabelValues("success").Inc()
	}

	entryID, err := s.cron.AddFunc(string(watch.Schedule), watchFunc)
	if err != nil {
		log.Printf("[DEBUG] CronScheduler.ScheduleWatch failed - cron.AddFunc error: %v", err)
		return err
	}

	s.watchEntries[watch.ID] = entryID
	log.Printf("Scheduled watch %s (%s) with cron expression: %s", watch.Name, watch.ID, watch.Schedule)

	return nil
}

// UnscheduleWatch removes a watch from the cron scheduler
func (s *CronScheduler) UnscheduleWatch(watchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.watchEntries[watchID]; exists {
		s.cron.Remove(entryID)
		delete(s.watchEntries, watchID)
		log.Printf("Unscheduled watch: %s", watchID)
	}
}

// loadAndScheduleAllWatches loads all watch definitions from the repository
// and schedules the active ones
func (s *CronScheduler) loadAndScheduleAllWatches() {
	watches, err := s.watchService.ListWatches()
	if err != nil {
		log.Printf("Error loading watches: %v", err)
		return
	}

	for _, watch := range watches {
		if watch.Status == domain.WatchPaused {
			continue
		}
		if err := s.ScheduleWatch(watch); err != nil {
			log.Printf("Error scheduling watch %s: %v", watch.ID, err)
		}
	}
}
