package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// Channel is a named delivery scope that connections subscribe to: one per
// project, one per user, plus the implicit global channel that reaches every
// connection regardless of subscription.
type Channel string

// ChannelGlobal is the implicit broadcast scope. Only presence and
// project-catalog events use it; entity mutations always go through
// project- or user-scoped channels.
const ChannelGlobal Channel = "global"

// ProjectChannel returns the delivery scope for a project's members.
func ProjectChannel(projectID uuid.UUID) Channel {
	return Channel("project:" + projectID.String())
}

// UserChannel returns a user's private delivery scope.
func UserChannel(userID uuid.UUID) Channel {
	return Channel("user:" + userID.String())
}

// Kind identifies what a ChangeEvent announces.
type Kind string

const (
	KindTaskCreated    Kind = "taskCreated"
	KindTaskUpdated    Kind = "taskUpdated"
	KindTaskDeleted    Kind = "taskDeleted"
	KindTaskAssigned   Kind = "taskAssigned"
	KindCommentCreated Kind = "commentCreated"
	KindCommentUpdated Kind = "commentUpdated"
	KindCommentDeleted Kind = "commentDeleted"
	KindProjectCreated Kind = "projectCreated"
	KindProjectUpdated Kind = "projectUpdated"
	KindProjectDeleted Kind = "projectDeleted"
	KindUserOnline     Kind = "userOnline"
	KindUserOffline    Kind = "userOffline"
	KindNotification   Kind = "newNotification"
)

// ChangeEvent is a transient message pushed to subscribed connections. It is
// never persisted and never replayed. The payload is always a complete
// snapshot of the affected entity, never a partial patch, so a client that
// misses intermediate events and applies only the latest one is still
// correct.
type ChangeEvent struct {
	Channel   Channel         `json:"channel"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewChangeEvent creates a ChangeEvent with the payload serialized to JSON.
func NewChangeEvent(channel Channel, kind Kind, payload interface{}) (*ChangeEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ChangeEvent{
		Channel:   channel,
		Kind:      kind,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ChangeEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Wire payload shapes, one per event kind.

// TaskCreatedPayload accompanies taskCreated on the project channel.
type TaskCreatedPayload struct {
	ProjectID uuid.UUID    `json:"project_id"`
	Task      *domain.Task `json:"task"`
}

// TaskPayload accompanies taskUpdated and the user-channel taskAssigned.
type TaskPayload struct {
	Task *domain.Task `json:"task"`
}

// TaskDeletedPayload accompanies taskDeleted.
type TaskDeletedPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// CommentCreatedPayload accompanies commentCreated.
type CommentCreatedPayload struct {
	TaskID  uuid.UUID       `json:"task_id"`
	Comment *domain.Comment `json:"comment"`
}

// CommentPayload accompanies commentUpdated.
type CommentPayload struct {
	Comment *domain.Comment `json:"comment"`
}

// CommentDeletedPayload accompanies commentDeleted.
type CommentDeletedPayload struct {
	CommentID uuid.UUID `json:"comment_id"`
	TaskID    uuid.UUID `json:"task_id"`
}

// ProjectPayload accompanies projectCreated and projectUpdated.
type ProjectPayload struct {
	Project *domain.Project `json:"project"`
}

// ProjectDeletedPayload accompanies projectDeleted.
type ProjectDeletedPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// PresencePayload accompanies userOnline; userOffline carries only the ID.
type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
}

// NotificationPointerPayload accompanies newNotification. It deliberately
// carries no message body: recipients fetch notification content through the
// notification API, keeping the stored record the single source of truth.
type NotificationPointerPayload struct {
	UserID uuid.UUID `json:"user_id"`
}
