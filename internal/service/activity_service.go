// Package service implements the application's core operations: the
// activity recorder and the notification engine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

const dueDateLayout = "2006-01-02"

// ActivityService appends and reads the immutable audit trail of task
// mutations.
//
// Appends are best-effort by contract: a failed audit write is logged and
// swallowed so it can never fail the mutation it describes. Losing an audit
// entry is less harmful than blocking task operations.
type ActivityService struct {
	activityStore store.ActivityStore
	logger        *slog.Logger
}

// NewActivityService creates an ActivityService.
func NewActivityService(activityStore store.ActivityStore, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		activityStore: activityStore,
		logger:        logger.With("component", "activity_service"),
	}
}

// Record appends one audit record. It never returns an error: validation
// failures and store failures are logged, and the caller's mutation
// proceeds. The returned record is nil only when the input was invalid.
func (s *ActivityService) Record(
	ctx context.Context,
	activityType domain.ActivityType,
	taskID, actorUserID uuid.UUID,
	change *domain.ActivityChange,
	metadata map[string]string,
) *domain.ActivityRecord {
	record, err := domain.NewActivityRecord(activityType, taskID, actorUserID, change, metadata)
	if err != nil {
		s.logger.Warn("invalid activity record not recorded",
			"activity_type", activityType,
			"task_id", taskID,
			"error", err)
		return nil
	}

	if err := s.activityStore.Create(ctx, record); err != nil {
		s.logger.Error("failed to append activity record",
			"activity_type", activityType,
			"task_id", taskID,
			"record_id", record.ID,
			"error", err)
	}

	return record
}

// ListForTask returns a task's audit trail, newest first. A limit of 0 or
// less returns the whole trail.
func (s *ActivityService) ListForTask(
	ctx context.Context,
	taskID uuid.UUID,
	limit int,
) ([]*domain.ActivityRecord, error) {
	records, err := s.activityStore.ListByTask(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities for task %s: %w", taskID, err)
	}
	return records, nil
}

// RecordTaskCreated appends the creation record, carrying the title and
// project in metadata, plus an assignment record when the task was created
// already assigned.
func (s *ActivityService) RecordTaskCreated(
	ctx context.Context,
	task *domain.Task,
	actorUserID uuid.UUID,
) {
	s.Record(ctx, domain.ActivityTaskCreated, task.ID, actorUserID, nil, map[string]string{
		"title":   task.Title,
		"project": task.ProjectID.String(),
	})

	if task.HasAssignee() {
		s.Record(ctx, domain.ActivityAssigned, task.ID, actorUserID, &domain.ActivityChange{
			Field:    "assignee",
			NewValue: task.AssigneeID.String(),
		}, nil)
	}
}

// RecordTaskDeleted appends the deletion record before the task row
// disappears, capturing the title in metadata so the audit trail can still
// report what was deleted once the live task is gone.
func (s *ActivityService) RecordTaskDeleted(
	ctx context.Context,
	task *domain.Task,
	actorUserID uuid.UUID,
) {
	s.Record(ctx, domain.ActivityTaskDeleted, task.ID, actorUserID, nil, map[string]string{
		"title": task.Title,
	})
}

// RecordCommentAdded appends a comment_added record.
func (s *ActivityService) RecordCommentAdded(
	ctx context.Context,
	taskID, actorUserID uuid.UUID,
) {
	s.Record(ctx, domain.ActivityCommentAdded, taskID, actorUserID, nil, nil)
}

// RecordAttachmentAdded appends an attachment_added record carrying the
// filename and file type in metadata.
func (s *ActivityService) RecordAttachmentAdded(
	ctx context.Context,
	taskID, actorUserID uuid.UUID,
	filename, fileType string,
) {
	s.Record(ctx, domain.ActivityAttachmentAdded, taskID, actorUserID, nil, map[string]string{
		"filename":  filename,
		"file_type": fileType,
	})
}

// RecordAttachmentRemoved appends an attachment_removed record.
func (s *ActivityService) RecordAttachmentRemoved(
	ctx context.Context,
	taskID, actorUserID uuid.UUID,
	filename string,
) {
	s.Record(ctx, domain.ActivityAttachmentRemoved, taskID, actorUserID, nil, map[string]string{
		"filename": filename,
	})
}

// RecordTaskChanges diffs a partial update against the task's prior state
// and appends one record per detected change. Fields omitted from the patch
// produce nothing: a partial update must not fabricate changes. Returns the
// records that were appended.
func (s *ActivityService) RecordTaskChanges(
	ctx context.Context,
	before *domain.Task,
	patch domain.TaskPatch,
	actorUserID uuid.UUID,
) []*domain.ActivityRecord {
	var records []*domain.ActivityRecord

	appendRecord := func(t domain.ActivityType, change *domain.ActivityChange) {
		if record := s.Record(ctx, t, before.ID, actorUserID, change, nil); record != nil {
			records = append(records, record)
		}
	}

	if patch.Status != nil && *patch.Status != before.Status {
		appendRecord(domain.ActivityStatusChanged, &domain.ActivityChange{
			Field:    "status",
			OldValue: string(before.Status),
			NewValue: string(*patch.Status),
		})
	}

	if patch.Priority != nil && *patch.Priority != before.Priority {
		appendRecord(domain.ActivityPriorityChanged, &domain.ActivityChange{
			Field:    "priority",
			OldValue: string(before.Priority),
			NewValue: string(*patch.Priority),
		})
	}

	if patch.Assignee != nil && *patch.Assignee != before.AssigneeID {
		oldID, newID := before.AssigneeID, *patch.Assignee
		change := &domain.ActivityChange{Field: "assignee"}
		if oldID != uuid.Nil {
			change.OldValue = oldID.String()
		}
		if newID != uuid.Nil {
			change.NewValue = newID.String()
		}

		switch {
		case oldID == uuid.Nil:
			appendRecord(domain.ActivityAssigned, change)
		case newID == uuid.Nil:
			appendRecord(domain.ActivityUnassigned, change)
		default:
			appendRecord(domain.ActivityReassigned, change)
		}
	}

	if patch.DueDate != nil {
		oldDay := formatDueDate(before.DueDate)
		newDay := formatDueDate(patch.DueDate)
		if oldDay != newDay {
			appendRecord(domain.ActivityDueDateChanged, &domain.ActivityChange{
				Field:    "due_date",
				OldValue: oldDay,
				NewValue: newDay,
			})
		}
	}

	if patch.ProjectID != nil && *patch.ProjectID != before.ProjectID {
		appendRecord(domain.ActivityProjectChanged, &domain.ActivityChange{
			Field:    "project",
			OldValue: before.ProjectID.String(),
			NewValue: patch.ProjectID.String(),
		})
	}

	if patch.Tags != nil {
		added, removed := diffTags(before.Tags, *patch.Tags)
		for _, tag := range added {
			appendRecord(domain.ActivityTagAdded, &domain.ActivityChange{
				Field:    "tags",
				NewValue: tag,
			})
		}
		for _, tag := range removed {
			appendRecord(domain.ActivityTagRemoved, &domain.ActivityChange{
				Field:    "tags",
				OldValue: tag,
			})
		}
	}

	return records
}

// formatDueDate renders a due date at day precision; nil or zero means "no
// due date" and renders empty. Changes within the same day are not audited.
func formatDueDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dueDateLayout)
}

// diffTags computes the set difference between the old and new tag lists,
// trimming whitespace and ignoring order and empty entries. A reorder of the
// same set yields no difference.
func diffTags(oldTags, newTags []string) (added, removed []string) {
	oldSet := normalizeTags(oldTags)
	newSet := normalizeTags(newTags)

	for tag := range newSet {
		if !oldSet[tag] {
			added = append(added, tag)
		}
	}
	for tag := range oldSet {
		if !newSet[tag] {
			removed = append(removed, tag)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func normalizeTags(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			set[tag] = true
		}
	}
	return set
}
