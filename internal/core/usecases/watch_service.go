package usecases

import (
	"context"
	"log"
	"time"

	"jobwatch/internal/core/domain"
)

type WatchRepository interface {
	Save(watch domain.Watch) error
	FindByID(id string) (domain.Watch, error)
	FindAll() ([]domain.Watch, error)
	Delete(id string) error
}

type WatchScheduler interface {
	ScheduleWatch(watch domain.Watch) error
	UnscheduleWatch(watchID string)
}

// WatchService manages persisted watch definitions and executes their
// monitoring sessions when the scheduler fires.
type WatchService struct {
	repo       WatchRepository
	monitor    *Monitor
	scheduler  WatchScheduler
	calculator *ScheduleCalculator
	defaults   MonitorOptions
}

func NewWatchService(repo WatchRepository, monitor *Monitor, defaults MonitorOptions) *WatchService {
	return &WatchService{
		repo:       repo,
		monitor:    monitor,
		calculator: NewScheduleCalculator(),
		defaults:   defaults,
	}
}

func (s *WatchService) SetScheduler(scheduler WatchScheduler) {
	s.scheduler = scheduler
}

func (s *WatchService) CreateWatch(name, operationID string, recipients []string, notifyStates []string, schedule string) (domain.Watch, error) {
	log.Printf("[DEBUG] CreateWatch called - name: %s, operation: %s, schedule: %s", name, operationID, schedule)

	if operationID == "" {
		return domain.Watch{}, domain.ErrInvalidOperationID
	}

	if len(recipients) == 0 {
		return domain.Watch{}, domain.ErrInvalidRecipients
	}

	if !domain.IsValidSchedule(schedule) {
		log.Printf("[DEBUG] CreateWatch failed - invalid schedule: %s", schedule)
		return domain.Watch{}, domain.ErrInvalidSchedule
	}

	states, err := domain.ParseStateSet(notifyStates)
	if err != nil {
		log.Printf("[DEBUG] CreateWatch failed - %v", err)
		return domain.Watch{}, err
	}

	watch := domain.NewWatch(name, operationID, recipients, states, domain.Schedule(schedule))

	if err := s.repo.Save(watch); err != nil {
		return domain.Watch{}, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleWatch(watch); err != nil {
			// The watch is saved; it just won't fire until the next restart.
			log.Printf("[DEBUG] CreateWatch - scheduler error (watch still created): %v", err)
		}
	}

	log.Printf("[DEBUG] CreateWatch completed - watch ID: %s", watch.ID)
	return watch, nil
}

func (s *WatchService) GetWatch(id string) (domain.Watch, error) {
	return s.repo.FindByID(id)
}

func (s *WatchService) ListWatches() ([]domain.Watch, error) {
	return s.repo.FindAll()
}

func (s *WatchService) UpdateWatch(id, name, operationID string, recipients []string, notifyStates []string, schedule string, status string) (domain.Watch, error) {
	watch, err := s.repo.FindByID(id)
	if err != nil {
		return domain.Watch{}, err
	}

	if operationID == "" {
		return domain.Watch{}, domain.ErrInvalidOperationID
	}

	if len(recipients) == 0 {
		return domain.Watch{}, domain.ErrInvalidRecipients
	}

	if !domain.IsValidSchedule(schedule) {
		return domain.Watch{}, domain.ErrInvalidSchedule
	}

	if !domain.IsValidWatchStatus(status) {
		return domain.Watch{}, domain.ErrInvalidStatus
	}

	states, err := domain.ParseStateSet(notifyStates)
	if err != nil {
		return domain.Watch{}, err
	}

	watch.Name = name
	watch.OperationID = operationID
	watch.Recipients = recipients
	watch.NotifyStates = states
	watch.Schedule = domain.Schedule(schedule)
	watch.Status = domain.WatchStatus(status)

	if err := s.repo.Save(watch); err != nil {
		return domain.Watch{}, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleWatch(watch); err != nil {
			log.Printf("[DEBUG] UpdateWatch - scheduler error: %v", err)
		}
	}

	return watch, nil
}

func (s *WatchService) DeleteWatch(id string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}

	if s.scheduler != nil {
		s.scheduler.UnscheduleWatch(id)
	}

	return s.repo.Delete(id)
}

func (s *WatchService) PauseWatch(id string) (domain.Watch, error) {
	watch, err := s.repo.FindByID(id)
	if err != nil {
		return domain.Watch{}, err
	}

	if watch.Status == domain.WatchPaused {
		return domain.Watch{}, domain.ErrWatchAlreadyPaused
	}

	paused := watch.WithStatus(domain.WatchPaused)
	if err := s.repo.Save(paused); err != nil {
		return domain.Watch{}, err
	}

	if s.scheduler != nil {
		s.scheduler.UnscheduleWatch(id)
	}

	return paused, nil
}

func (s *WatchService) ResumeWatch(id string) (domain.Watch, error) {
	watch, err := s.repo.FindByID(id)
	if err != nil {
		return domain.Watch{}, err
	}

	if watch.Status != domain.WatchPaused {
		return domain.Watch{}, domain.ErrWatchNotPaused
	}

	resumed := watch.WithStatus(domain.WatchScheduled)
	if err := s.repo.Save(resumed); err != nil {
		return domain.Watch{}, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleWatch(resumed); err != nil {
			log.Printf("[DEBUG] ResumeWatch - scheduler error: %v", err)
		}
	}

	return resumed, nil
}

// RunWatch executes a watch immediately, outside its schedule
func (s *WatchService) RunWatch(id string) error {
	watch, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	return s.ExecuteScheduledWatch(watch)
}

// ExecuteScheduledWatch runs one monitoring session for the watch and
// records the outcome on the definition. Called by the cron scheduler when
// the watch fires.
func (s *WatchService) ExecuteScheduledWatch(watch domain.Watch) error {
	log.Printf("Executing watch: %s (%s) for operation %s", watch.Name, watch.ID, watch.OperationID)

	opts := s.defaults
	opts.NotifyStates = watch.NotifyStates
	opts.Recipients = watch.Recipients

	monitorLog, runErr := s.monitor.Run(context.Background(), watch.OperationID, opts)

	updated := watch.WithLastRun(time.Now().UTC())
	if runErr != nil {
		updated = updated.WithStatus(domain.WatchFailed)
		log.Printf("Watch %s failed: %v", watch.ID, runErr)
	} else {
		updated = updated.WithStatus(domain.WatchScheduled)
		log.Printf("Watch %s finished with %d notification(s)", watch.ID, len(monitorLog))
	}

	if err := s.repo.Save(updated); err != nil {
		log.Printf("Failed to record watch run for %s: %v", watch.ID, err)
	}

	return runErr
}

// NextRun reports when the watch is next due
func (s *WatchService) NextRun(watch domain.Watch, now time.Time) (time.Time, error) {
	return s.calculator.CalculateNextRun(watch, now)
}
