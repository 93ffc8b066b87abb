package usecases

import (
	"time"

	"github.com/robfig/cron/v3"

	"jobwatch/internal/core/domain"
)

// ScheduleCalculator computes next run times for watches
type ScheduleCalculator struct{}

func NewScheduleCalculator() *ScheduleCalculator {
	return &ScheduleCalculator{}
}

// CalculateNextRun evaluates the watch's cron expression against the given
// time. All calculations are in UTC.
func (sc *ScheduleCalculator) CalculateNextRun(watch domain.Watch, currentTime time.Time) (time.Time, error) {
	now := currentTime.UTC()

	specParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := specParser.Parse(string(watch.Schedule))
	if err != nil {
		return now, err
	}

	return sched.Next(now), nil
}

// GetInitialRunTime is when a watch should first fire. Watches that have
// never run fire immediately.
func (sc *ScheduleCalculator) GetInitialRunTime(watch domain.Watch, currentTime time.Time) time.Time {
	if watch.LastRun == nil {
		return currentTime.UTC()
	}

	nextRun, err := sc.CalculateNextRun(watch, currentTime)
	if err != nil {
		return currentTime.UTC()
	}

	return nextRun
}
