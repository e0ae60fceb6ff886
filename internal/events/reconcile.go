package events

import (
	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// TaskView is a consumer-side task cache kept current by applying pushed
// ChangeEvents. It encodes the merge rules clients must follow: last write
// wins per task id, a created snapshot inserts unless the id is already
// present, an updated snapshot replaces the cached task wholesale, and a
// deletion is terminal. Duplicate deliveries (the same mutation arriving via
// both a project and a user channel) collapse into one state change.
//
// The server never reads a TaskView; it exists so the merge rules live in
// code and tests instead of only in prose.
type TaskView struct {
	tasks   map[uuid.UUID]*domain.Task
	deleted map[uuid.UUID]struct{}
}

// NewTaskView creates an empty TaskView.
func NewTaskView() *TaskView {
	return &TaskView{
		tasks:   make(map[uuid.UUID]*domain.Task),
		deleted: make(map[uuid.UUID]struct{}),
	}
}

// Apply merges one event into the view. Events of kinds the view does not
// track are ignored. Returns an error only for an undecodable payload.
func (v *TaskView) Apply(event *ChangeEvent) error {
	switch event.Kind {
	case KindTaskCreated:
		var payload TaskCreatedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return err
		}
		v.insert(payload.Task)

	case KindTaskUpdated, KindTaskAssigned:
		var payload TaskPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return err
		}
		v.upsert(payload.Task)

	case KindTaskDeleted:
		var payload TaskDeletedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return err
		}
		delete(v.tasks, payload.TaskID)
		v.deleted[payload.TaskID] = struct{}{}
	}

	return nil
}

// insert adds a task unless it is already known. An explicit created
// snapshot is the one thing allowed to revive a deleted id: it clears the
// tombstone, since only a creation means the entity exists again.
func (v *TaskView) insert(task *domain.Task) {
	if task == nil {
		return
	}
	delete(v.deleted, task.ID)
	if _, ok := v.tasks[task.ID]; ok {
		return
	}
	v.tasks[task.ID] = task
}

// upsert replaces the cached task with the pushed snapshot. A snapshot for a
// deleted id is stale and dropped: deletion is terminal, never undone by a
// late update.
func (v *TaskView) upsert(task *domain.Task) {
	if task == nil {
		return
	}
	if _, gone := v.deleted[task.ID]; gone {
		return
	}
	v.tasks[task.ID] = task
}

// Get returns the cached task, or false when unknown or deleted.
func (v *TaskView) Get(id uuid.UUID) (*domain.Task, bool) {
	task, ok := v.tasks[id]
	return task, ok
}

// Len returns the number of live tasks in the view.
func (v *TaskView) Len() int {
	return len(v.tasks)
}
