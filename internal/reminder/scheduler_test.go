package reminder

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureNotifier records which tasks were flagged due soon.
type captureNotifier struct {
	mu    sync.Mutex
	tasks []*domain.Task
}

func (n *captureNotifier) NotifyDueSoon(_ context.Context, task *domain.Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, task)
}

func (n *captureNotifier) taskIDs() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []uuid.UUID
	for _, task := range n.tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func dueTask(assignee uuid.UUID, due time.Time) *domain.Task {
	return &domain.Task{
		ID:         uuid.New(),
		ProjectID:  uuid.New(),
		CreatorID:  uuid.New(),
		AssigneeID: assignee,
		Title:      "Renew certificates",
		Status:     domain.TaskStatusPending,
		Priority:   domain.TaskPriorityHigh,
		DueDate:    &due,
	}
}

func newSchedulerFixture() (*Scheduler, *mocks.TaskStore, *captureNotifier) {
	taskStore := mocks.NewTaskStore()
	notifier := &captureNotifier{}
	scheduler := NewScheduler(taskStore, notifier, SchedulerConfig{
		Interval: time.Hour,
		Window:   24 * time.Hour,
	}, testLogger())
	return scheduler, taskStore, notifier
}

func TestSweepNotifiesTasksInsideWindow(t *testing.T) {
	t.Parallel()

	scheduler, taskStore, notifier := newSchedulerFixture()
	assignee := uuid.New()
	now := time.Now().UTC()

	inWindow := dueTask(assignee, now.Add(6*time.Hour))
	outside := dueTask(assignee, now.Add(48*time.Hour))
	taskStore.Put(inWindow)
	taskStore.Put(outside)

	notified, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, []uuid.UUID{inWindow.ID}, notifier.taskIDs())
}

func TestSweepSkipsUnassignedAndCompleted(t *testing.T) {
	t.Parallel()

	scheduler, taskStore, notifier := newSchedulerFixture()
	now := time.Now().UTC()

	unassigned := dueTask(uuid.Nil, now.Add(time.Hour))
	completed := dueTask(uuid.New(), now.Add(time.Hour))
	completed.Status = domain.TaskStatusCompleted
	taskStore.Put(unassigned)
	taskStore.Put(completed)

	notified, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, notified)
	assert.Empty(t, notifier.taskIDs())
}

func TestSweepDeduplicatesAcrossRuns(t *testing.T) {
	t.Parallel()

	scheduler, taskStore, notifier := newSchedulerFixture()
	assignee := uuid.New()
	now := time.Now().UTC()

	task := dueTask(assignee, now.Add(3*time.Hour))
	taskStore.Put(task)

	first, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second, "the same deadline is announced once")
	assert.Len(t, notifier.taskIDs(), 1)
}

func TestSweepRenotifiesWhenDeadlineMoves(t *testing.T) {
	t.Parallel()

	scheduler, taskStore, notifier := newSchedulerFixture()
	assignee := uuid.New()
	now := time.Now().UTC()

	task := dueTask(assignee, now.Add(3*time.Hour))
	taskStore.Put(task)

	_, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)

	// The deadline moves to another day: a fresh warning is due.
	moved := now.Add(30 * time.Hour)
	task.DueDate = &moved
	taskStore.Put(task)
	scheduler.config.Window = 48 * time.Hour

	second, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second)
	assert.Len(t, notifier.taskIDs(), 2)
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	scheduler, taskStore, notifier := newSchedulerFixture()
	assignee := uuid.New()
	taskStore.Put(dueTask(assignee, time.Now().UTC().Add(time.Hour)))

	scheduler.Start()
	scheduler.Stop()

	// Start runs an immediate sweep before the first tick.
	assert.Len(t, notifier.taskIDs(), 1)
}
