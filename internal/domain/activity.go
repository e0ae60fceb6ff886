package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies the kind of task mutation an ActivityRecord
// describes. The set is closed: stores reject unknown values.
type ActivityType string

const (
	ActivityTaskCreated       ActivityType = "task_created"
	ActivityTaskDeleted       ActivityType = "task_deleted"
	ActivityStatusChanged     ActivityType = "status_changed"
	ActivityPriorityChanged   ActivityType = "priority_changed"
	ActivityAssigned          ActivityType = "assigned"
	ActivityReassigned        ActivityType = "reassigned"
	ActivityUnassigned        ActivityType = "unassigned"
	ActivityDueDateChanged    ActivityType = "due_date_changed"
	ActivityTagAdded          ActivityType = "tag_added"
	ActivityTagRemoved        ActivityType = "tag_removed"
	ActivityProjectChanged    ActivityType = "project_changed"
	ActivityAttachmentAdded   ActivityType = "attachment_added"
	ActivityAttachmentRemoved ActivityType = "attachment_removed"
	ActivityCommentAdded      ActivityType = "comment_added"
)

// Activity-specific validation errors, all wrapping ErrValidation.
var (
	// ErrActivityTypeInvalid is returned when the activity type is not one
	// of the closed set of known types.
	ErrActivityTypeInvalid = fmt.Errorf("%w: activity type is not valid", ErrValidation)

	// ErrActivityTaskIDEmpty is returned when an activity's task ID is nil.
	ErrActivityTaskIDEmpty = fmt.Errorf("%w: activity task ID cannot be empty", ErrValidation)

	// ErrActivityActorIDEmpty is returned when an activity's actor ID is nil.
	ErrActivityActorIDEmpty = fmt.Errorf("%w: activity actor ID cannot be empty", ErrValidation)

	// ErrActivityChangeAndMetadata is returned when both a field change and
	// metadata are set; the two are mutually exclusive.
	ErrActivityChangeAndMetadata = fmt.Errorf(
		"%w: activity change and metadata are mutually exclusive", ErrValidation,
	)
)

var validActivityTypes = map[ActivityType]bool{
	ActivityTaskCreated:       true,
	ActivityTaskDeleted:       true,
	ActivityStatusChanged:     true,
	ActivityPriorityChanged:   true,
	ActivityAssigned:          true,
	ActivityReassigned:        true,
	ActivityUnassigned:        true,
	ActivityDueDateChanged:    true,
	ActivityTagAdded:          true,
	ActivityTagRemoved:        true,
	ActivityProjectChanged:    true,
	ActivityAttachmentAdded:   true,
	ActivityAttachmentRemoved: true,
	ActivityCommentAdded:      true,
}

// IsValid reports whether t is one of the known activity types.
func (t ActivityType) IsValid() bool {
	return validActivityTypes[t]
}

// ActivityChange captures a single field transition on a task. Old or new
// value may be empty, e.g. for assignment from nobody.
type ActivityChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// ActivityRecord is one immutable entry in a task's audit trail. Records are
// never updated or deleted once written; the task they reference may be, so
// records that must outlive their task (e.g. task_deleted) carry the details
// they need in Metadata.
type ActivityRecord struct {
	ID          uuid.UUID         `json:"id"`
	TaskID      uuid.UUID         `json:"task_id"`
	ActorUserID uuid.UUID         `json:"actor_user_id"`
	Type        ActivityType      `json:"type"`
	Change      *ActivityChange   `json:"change,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewActivityRecord creates a validated ActivityRecord with a fresh ID and
// UTC creation timestamp. Change and metadata are mutually exclusive; either
// or both may be nil.
func NewActivityRecord(
	activityType ActivityType,
	taskID, actorUserID uuid.UUID,
	change *ActivityChange,
	metadata map[string]string,
) (*ActivityRecord, error) {
	record := &ActivityRecord{
		ID:          uuid.New(),
		TaskID:      taskID,
		ActorUserID: actorUserID,
		Type:        activityType,
		Change:      change,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks the record's invariants.
func (r *ActivityRecord) Validate() error {
	if !r.Type.IsValid() {
		return ErrActivityTypeInvalid
	}

	if r.TaskID == uuid.Nil {
		return ErrActivityTaskIDEmpty
	}

	if r.ActorUserID == uuid.Nil {
		return ErrActivityActorIDEmpty
	}

	if r.Change != nil && len(r.Metadata) > 0 {
		return ErrActivityChangeAndMetadata
	}

	return nil
}
