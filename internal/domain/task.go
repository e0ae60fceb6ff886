package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Attachment describes a file attached to a task. The content itself lives
// in an external content store; only the reference is kept here.
type Attachment struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	FileType     string    `json:"file_type"`
	Size         int64     `json:"size"`
	UploadedByID uuid.UUID `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Task is the read model of a task as this service needs it: enough state to
// resolve event audiences (project, creator, assignee), derive notifications,
// and serve as a complete snapshot payload on the wire. The CRUD surface that
// owns task writes lives outside this service.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	AssigneeID  uuid.UUID    `json:"assignee_id,omitempty"` // uuid.Nil when unassigned
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Tags        []string     `json:"tags,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasAssignee reports whether the task is currently assigned to anyone.
func (t *Task) HasAssignee() bool {
	return t.AssigneeID != uuid.Nil
}

// TaskPatch is a partial update to a task. Nil fields were omitted from the
// update and must not produce audit records. An Assignee pointing at
// uuid.Nil means "unassign"; a DueDate pointing at the zero time means
// "clear the due date".
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	Assignee    *uuid.UUID
	DueDate     *time.Time
	ProjectID   *uuid.UUID
	Tags        *[]string
}

// Comment is a comment on a task.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
