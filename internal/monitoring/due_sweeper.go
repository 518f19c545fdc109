package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/models"
	"github.com/taskhive/taskhive-be/internal/services"
)

// TaskSource supplies the tasks the sweeper inspects.
type TaskSource interface {
	ListDueTasks(before time.Time) ([]models.Task, error)
}

// realertAfter is how long before an already-notified overdue task is
// flagged again.
const realertAfter = 24 * time.Hour

// DueSweeper periodically flags overdue, uncompleted tasks by recording a
// "task.due" event for the owning user.
type DueSweeper struct {
	tasks    TaskSource
	events   services.EventServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	notified map[string]time.Time // task ID -> last alert time
}

// NewDueSweeper creates a sweeper driven by a standard cron expression.
func NewDueSweeper(tasks TaskSource, events services.EventServiceProvider, cronExpr string) (*DueSweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cronExpr, err)
	}
	return &DueSweeper{
		tasks:    tasks,
		events:   events,
		schedule: schedule,
		done:     make(chan bool),
		notified: make(map[string]time.Time),
	}, nil
}

// Run starts the sweeper's ticking loop. The cron schedule decides when a
// sweep actually happens; the ticker only polls the clock.
func (s *DueSweeper) Run() {
	log.Info().Msg("Starting background due-date sweeper...")
	s.ticker = time.NewTicker(30 * time.Second)
	defer s.ticker.Stop()

	// Run once immediately on start
	s.sweep(time.Now())
	nextRun := s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping background due-date sweeper.")
			return
		case now := <-s.ticker.C:
			if now.After(nextRun) {
				s.sweep(now)
				nextRun = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *DueSweeper) Stop() {
	s.done <- true
}

// sweep flags every overdue task that has not been alerted recently.
func (s *DueSweeper) sweep(now time.Time) {
	tasks, err := s.tasks.ListDueTasks(now)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to query due tasks")
		return
	}

	for _, task := range tasks {
		if last, ok := s.notified[task.ID]; ok && now.Sub(last) < realertAfter {
			continue
		}
		s.notified[task.ID] = now

		msg := fmt.Sprintf("Task %q is overdue", task.Title)
		s.events.RecordEvent("task.due", "warn", msg, task.UserID, &task.ID)
	}

	// Forget entries for tasks that are no longer overdue.
	current := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		current[task.ID] = true
	}
	for id := range s.notified {
		if !current[id] {
			delete(s.notified, id)
		}
	}
}
