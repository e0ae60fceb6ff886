package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/mocks"
	"github.com/taskpulse/taskpulse-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newActivityFixture() (*service.ActivityService, *mocks.ActivityStore) {
	activityStore := mocks.NewActivityStore()
	return service.NewActivityService(activityStore, testLogger()), activityStore
}

func baseTask() *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		CreatorID: uuid.New(),
		Title:     "Write onboarding docs",
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityMedium,
		Tags:      []string{"docs"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func statusPtr(s domain.TaskStatus) *domain.TaskStatus       { return &s }
func priorityPtr(p domain.TaskPriority) *domain.TaskPriority { return &p }
func uuidPtr(id uuid.UUID) *uuid.UUID                        { return &id }
func timePtr(t time.Time) *time.Time                         { return &t }
func tagsPtr(tags []string) *[]string                        { return &tags }

func TestRecordAppendsValidatedRecord(t *testing.T) {
	t.Parallel()

	svc, activityStore := newActivityFixture()
	taskID := uuid.New()
	actorID := uuid.New()

	record := svc.Record(context.Background(), domain.ActivityStatusChanged, taskID, actorID,
		&domain.ActivityChange{Field: "status", OldValue: "pending", NewValue: "completed"}, nil)

	require.NotNil(t, record)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, taskID, record.TaskID)
	assert.Equal(t, actorID, record.ActorUserID)
	require.Len(t, activityStore.Records, 1)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, activityStore := newActivityFixture()

	record := svc.Record(context.Background(), domain.ActivityType("exploded"),
		uuid.New(), uuid.New(), nil, nil)

	assert.Nil(t, record)
	assert.Empty(t, activityStore.Records, "invalid records never reach the store")
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	t.Parallel()

	svc, activityStore := newActivityFixture()
	activityStore.CreateErr = errors.New("connection reset")

	record := svc.Record(context.Background(), domain.ActivityCommentAdded,
		uuid.New(), uuid.New(), nil, nil)

	require.NotNil(t, record, "a failed audit write must not fail the mutation")
	assert.Empty(t, activityStore.Records)
}

func TestRecordTaskCreated(t *testing.T) {
	t.Parallel()

	t.Run("unassigned task yields one record", func(t *testing.T) {
		t.Parallel()

		svc, activityStore := newActivityFixture()
		task := baseTask()
		actorID := task.CreatorID

		svc.RecordTaskCreated(context.Background(), task, actorID)

		require.Len(t, activityStore.Records, 1)
		record := activityStore.Records[0]
		assert.Equal(t, domain.ActivityTaskCreated, record.Type)
		assert.Equal(t, task.Title, record.Metadata["title"])
		assert.Equal(t, task.ProjectID.String(), record.Metadata["project"])
	})

	t.Run("pre-assigned task also yields an assignment record", func(t *testing.T) {
		t.Parallel()

		svc, activityStore := newActivityFixture()
		task := baseTask()
		task.AssigneeID = uuid.New()

		svc.RecordTaskCreated(context.Background(), task, task.CreatorID)

		require.Len(t, activityStore.Records, 2)
		assigned := activityStore.ByType(domain.ActivityAssigned)
		require.Len(t, assigned, 1)
		require.NotNil(t, assigned[0].Change)
		assert.Equal(t, task.AssigneeID.String(), assigned[0].Change.NewValue)
		assert.Empty(t, assigned[0].Change.OldValue)
	})
}

func TestRecordTaskDeletedKeepsTitle(t *testing.T) {
	t.Parallel()

	svc, activityStore := newActivityFixture()
	task := baseTask()

	svc.RecordTaskDeleted(context.Background(), task, task.CreatorID)

	require.Len(t, activityStore.Records, 1)
	record := activityStore.Records[0]
	assert.Equal(t, domain.ActivityTaskDeleted, record.Type)
	assert.Equal(t, task.Title, record.Metadata["title"],
		"the trail must name the task after its row is gone")
}

func TestRecordTaskChanges(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()

	testCases := []struct {
		name      string
		setup     func(task *domain.Task)
		patch     func(task *domain.Task) domain.TaskPatch
		wantTypes []domain.ActivityType
	}{
		{
			name: "status change",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Status: statusPtr(domain.TaskStatusCompleted)}
			},
			wantTypes: []domain.ActivityType{domain.ActivityStatusChanged},
		},
		{
			name: "same status is not a change",
			patch: func(task *domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Status: statusPtr(task.Status)}
			},
			wantTypes: nil,
		},
		{
			name: "priority change",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Priority: priorityPtr(domain.TaskPriorityHigh)}
			},
			wantTypes: []domain.ActivityType{domain.ActivityPriorityChanged},
		},
		{
			name: "omitted fields produce nothing",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{}
			},
			wantTypes: nil,
		},
		{
			name: "assignment from nobody",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Assignee: uuidPtr(uuid.New())}
			},
			wantTypes: []domain.ActivityType{domain.ActivityAssigned},
		},
		{
			name:  "reassignment",
			setup: func(task *domain.Task) { task.AssigneeID = uuid.New() },
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Assignee: uuidPtr(uuid.New())}
			},
			wantTypes: []domain.ActivityType{domain.ActivityReassigned},
		},
		{
			name:  "unassignment",
			setup: func(task *domain.Task) { task.AssigneeID = uuid.New() },
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{Assignee: uuidPtr(uuid.Nil)}
			},
			wantTypes: []domain.ActivityType{domain.ActivityUnassigned},
		},
		{
			name: "due date set",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{DueDate: timePtr(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))}
			},
			wantTypes: []domain.ActivityType{domain.ActivityDueDateChanged},
		},
		{
			name: "due date moved within the same day",
			setup: func(task *domain.Task) {
				task.DueDate = timePtr(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
			},
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{DueDate: timePtr(time.Date(2026, 9, 1, 17, 30, 0, 0, time.UTC))}
			},
			wantTypes: nil,
		},
		{
			name: "due date cleared",
			setup: func(task *domain.Task) {
				task.DueDate = timePtr(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
			},
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{DueDate: timePtr(time.Time{})}
			},
			wantTypes: []domain.ActivityType{domain.ActivityDueDateChanged},
		},
		{
			name: "project move",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{ProjectID: uuidPtr(uuid.New())}
			},
			wantTypes: []domain.ActivityType{domain.ActivityProjectChanged},
		},
		{
			name: "multiple fields in one patch",
			patch: func(*domain.Task) domain.TaskPatch {
				return domain.TaskPatch{
					Status:   statusPtr(domain.TaskStatusInProgress),
					Priority: priorityPtr(domain.TaskPriorityHigh),
				}
			},
			wantTypes: []domain.ActivityType{
				domain.ActivityStatusChanged,
				domain.ActivityPriorityChanged,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newActivityFixture()
			task := baseTask()
			if tc.setup != nil {
				tc.setup(task)
			}

			records := svc.RecordTaskChanges(context.Background(), task, tc.patch(task), actorID)

			var gotTypes []domain.ActivityType
			for _, record := range records {
				gotTypes = append(gotTypes, record.Type)
			}
			assert.Equal(t, tc.wantTypes, gotTypes)
		})
	}
}

func TestRecordTaskChangesTags(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()

	t.Run("added and removed", func(t *testing.T) {
		t.Parallel()

		svc, _ := newActivityFixture()
		task := baseTask()
		task.Tags = []string{"Bug", "urgent"}

		records := svc.RecordTaskChanges(context.Background(), task,
			domain.TaskPatch{Tags: tagsPtr([]string{"urgent", "Feature"})}, actorID)

		require.Len(t, records, 2)
		assert.Equal(t, domain.ActivityTagAdded, records[0].Type)
		assert.Equal(t, "Feature", records[0].Change.NewValue)
		assert.Equal(t, domain.ActivityTagRemoved, records[1].Type)
		assert.Equal(t, "Bug", records[1].Change.OldValue)
	})

	t.Run("reorder is not a change", func(t *testing.T) {
		t.Parallel()

		svc, _ := newActivityFixture()
		task := baseTask()
		task.Tags = []string{"alpha", "beta"}

		records := svc.RecordTaskChanges(context.Background(), task,
			domain.TaskPatch{Tags: tagsPtr([]string{"beta", "alpha"})}, actorID)

		assert.Empty(t, records)
	})

	t.Run("whitespace and empties are ignored", func(t *testing.T) {
		t.Parallel()

		svc, _ := newActivityFixture()
		task := baseTask()
		task.Tags = []string{"alpha"}

		records := svc.RecordTaskChanges(context.Background(), task,
			domain.TaskPatch{Tags: tagsPtr([]string{" alpha ", ""})}, actorID)

		assert.Empty(t, records)
	})
}

func TestListForTask(t *testing.T) {
	t.Parallel()

	svc, _ := newActivityFixture()
	taskID := uuid.New()
	actorID := uuid.New()

	for i := 0; i < 3; i++ {
		svc.Record(context.Background(), domain.ActivityCommentAdded, taskID, actorID, nil, nil)
	}
	svc.Record(context.Background(), domain.ActivityCommentAdded, uuid.New(), actorID, nil, nil)

	records, err := svc.ListForTask(context.Background(), taskID, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3, "only the requested task's trail comes back")

	limited, err := svc.ListForTask(context.Background(), taskID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
