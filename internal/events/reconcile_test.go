package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

func applyEvent(t *testing.T, view *TaskView, channel Channel, kind Kind, payload interface{}) {
	t.Helper()
	event, err := NewChangeEvent(channel, kind, payload)
	require.NoError(t, err)
	require.NoError(t, view.Apply(event))
}

func TestTaskViewCreateAndUpdate(t *testing.T) {
	t.Parallel()

	view := NewTaskView()
	projectID := uuid.New()
	task := &domain.Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		CreatorID: uuid.New(),
		Title:     "Draft proposal",
		Status:    domain.TaskStatusPending,
	}

	applyEvent(t, view, ProjectChannel(projectID), KindTaskCreated,
		TaskCreatedPayload{ProjectID: projectID, Task: task})

	got, ok := view.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Draft proposal", got.Title)

	updated := *task
	updated.Title = "Draft proposal v2"
	updated.Status = domain.TaskStatusInProgress
	applyEvent(t, view, ProjectChannel(projectID), KindTaskUpdated,
		TaskPayload{Task: &updated})

	got, ok = view.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Draft proposal v2", got.Title)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status,
		"the pushed snapshot replaces the cached task wholesale")
}

func TestTaskViewDuplicateDeliveryCollapses(t *testing.T) {
	t.Parallel()

	view := NewTaskView()
	projectID := uuid.New()
	assignee := uuid.New()
	task := &domain.Task{
		ID:         uuid.New(),
		ProjectID:  projectID,
		CreatorID:  uuid.New(),
		AssigneeID: assignee,
		Title:      "Prepare launch checklist",
	}

	// The same creation arrives via the project channel and the assignee's
	// user channel.
	applyEvent(t, view, ProjectChannel(projectID), KindTaskCreated,
		TaskCreatedPayload{ProjectID: projectID, Task: task})
	applyEvent(t, view, UserChannel(assignee), KindTaskAssigned,
		TaskPayload{Task: task})

	assert.Equal(t, 1, view.Len())
}

func TestTaskViewDeleteIsTerminal(t *testing.T) {
	t.Parallel()

	view := NewTaskView()
	projectID := uuid.New()
	task := &domain.Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		CreatorID: uuid.New(),
		Title:     "Obsolete task",
	}

	applyEvent(t, view, ProjectChannel(projectID), KindTaskCreated,
		TaskCreatedPayload{ProjectID: projectID, Task: task})
	applyEvent(t, view, ProjectChannel(projectID), KindTaskDeleted,
		TaskDeletedPayload{TaskID: task.ID})

	_, ok := view.Get(task.ID)
	assert.False(t, ok)

	// A stale update that raced the deletion must not resurrect the task.
	applyEvent(t, view, ProjectChannel(projectID), KindTaskUpdated,
		TaskPayload{Task: task})
	_, ok = view.Get(task.ID)
	assert.False(t, ok)
	assert.Zero(t, view.Len())

	// An explicit creation is the one event that revives the id.
	applyEvent(t, view, ProjectChannel(projectID), KindTaskCreated,
		TaskCreatedPayload{ProjectID: projectID, Task: task})
	_, ok = view.Get(task.ID)
	assert.True(t, ok)
}

func TestTaskViewUpdateForUnseenTaskUpserts(t *testing.T) {
	t.Parallel()

	view := NewTaskView()
	projectID := uuid.New()
	task := &domain.Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		CreatorID: uuid.New(),
		Title:     "Joined mid-stream",
	}

	// A client that subscribed after the creation still converges.
	applyEvent(t, view, ProjectChannel(projectID), KindTaskUpdated,
		TaskPayload{Task: task})

	got, ok := view.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Joined mid-stream", got.Title)
}

func TestTaskViewIgnoresUnrelatedKinds(t *testing.T) {
	t.Parallel()

	view := NewTaskView()

	applyEvent(t, view, ChannelGlobal, KindUserOnline,
		PresencePayload{UserID: uuid.New(), Name: "Dana"})

	assert.Zero(t, view.Len())
}
