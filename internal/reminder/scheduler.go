// Package reminder runs the scheduled due-soon sweep: a periodic scan for
// tasks whose due date falls inside the warning window, notifying each
// task's assignee through the notification engine.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// DueSoonNotifier is the slice of the notification engine the sweep needs.
type DueSoonNotifier interface {
	NotifyDueSoon(ctx context.Context, task *domain.Task)
}

// SchedulerConfig holds configuration for the due-soon scheduler.
type SchedulerConfig struct {
	// Interval is how often the sweep runs.
	Interval time.Duration

	// Window is how far ahead of now a due date counts as "due soon".
	Window time.Duration

	// SweepTimeout bounds a single sweep's execution.
	SweepTimeout time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults:
// a daily sweep over a 24-hour warning window.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     24 * time.Hour,
		Window:       24 * time.Hour,
		SweepTimeout: time.Minute,
	}
}

// Scheduler periodically scans for tasks due within the window and not yet
// completed, and notifies their assignees. It only reads task state and
// calls the append-only notify path, so it is safe to run concurrently with
// live mutations without coordination.
//
// A dedup guard keyed by (task, due-date day) stops consecutive sweeps from
// re-notifying the same deadline. The guard is in-process; a restart may
// re-notify once.
type Scheduler struct {
	taskStore store.TaskStore
	notifier  DueSoonNotifier
	config    SchedulerConfig
	logger    *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	notified map[string]time.Time // dedup key -> when notified
}

// NewScheduler creates a Scheduler. Zero config fields fall back to the
// defaults.
func NewScheduler(
	taskStore store.TaskStore,
	notifier DueSoonNotifier,
	config SchedulerConfig,
	logger *slog.Logger,
) *Scheduler {
	defaults := DefaultSchedulerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = defaults.SweepTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		taskStore:  taskStore,
		notifier:   notifier,
		config:     config,
		logger:     logger.With("component", "reminder_scheduler"),
		ctx:        ctx,
		cancelFunc: cancel,
		notified:   make(map[string]time.Time),
	}
}

// Start launches the sweep loop. The first sweep runs immediately,
// subsequent ones every Interval.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("due-soon scheduler started",
		"interval", s.config.Interval,
		"window", s.config.Window)
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
	s.logger.Info("due-soon scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.sweepOnce()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Scheduler) sweepOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.config.SweepTimeout)
	defer cancel()

	notified, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("due-soon sweep failed", "error", err)
		return
	}
	s.logger.Info("due-soon sweep completed", "notified", notified)
}

// Sweep performs one scan and returns how many notifications were issued.
// Exported so callers can trigger an out-of-cycle sweep.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	tasks, err := s.taskStore.ListDueBetween(ctx, now, now.Add(s.config.Window))
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, task := range tasks {
		if !task.HasAssignee() || task.DueDate == nil {
			continue
		}
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		if !s.markNotified(task) {
			continue // this deadline was already announced
		}

		s.notifier.NotifyDueSoon(ctx, task)
		notified++
	}

	s.prune(now)
	return notified, nil
}

// markNotified records the (task, due-date day) pair and reports whether it
// was new.
func (s *Scheduler) markNotified(task *domain.Task) bool {
	key := task.ID.String() + "|" + task.DueDate.UTC().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[key]; seen {
		return false
	}
	s.notified[key] = time.Now().UTC()
	return true
}

// prune drops dedup entries old enough that their deadline has passed.
func (s *Scheduler) prune(now time.Time) {
	cutoff := now.Add(-2 * s.config.Window)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, at := range s.notified {
		if at.Before(cutoff) {
			delete(s.notified, key)
		}
	}
}
