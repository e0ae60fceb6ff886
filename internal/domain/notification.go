package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies why a notification was generated.
type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskComment   NotificationType = "task_comment"
	NotificationTaskUpdated   NotificationType = "task_updated"
	NotificationTaskDueSoon   NotificationType = "task_due_soon"
	NotificationTaskCompleted NotificationType = "task_completed"
)

// Notification-specific validation errors, all wrapping ErrValidation.
var (
	// ErrNotificationTypeInvalid is returned when the notification type is
	// not one of the known types.
	ErrNotificationTypeInvalid = fmt.Errorf("%w: notification type is not valid", ErrValidation)

	// ErrNotificationRecipientEmpty is returned when the recipient user ID is nil.
	ErrNotificationRecipientEmpty = fmt.Errorf("%w: notification recipient cannot be empty", ErrValidation)

	// ErrNotificationMessageEmpty is returned when the message is empty and
	// no default exists for the type.
	ErrNotificationMessageEmpty = fmt.Errorf("%w: notification message cannot be empty", ErrValidation)
)

var defaultNotificationMessages = map[NotificationType]string{
	NotificationTaskAssigned:  "You have been assigned a new task",
	NotificationTaskComment:   "New comment on your task",
	NotificationTaskUpdated:   "A task has been updated",
	NotificationTaskDueSoon:   "A task is due soon",
	NotificationTaskCompleted: "A task has been completed",
}

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	_, ok := defaultNotificationMessages[t]
	return ok
}

// DefaultMessage returns the fallback message text for the type, or the
// empty string for unknown types.
func (t NotificationType) DefaultMessage() string {
	return defaultNotificationMessages[t]
}

// Notification is a per-user alert derived from a task mutation. Exactly one
// recipient per record; notifying several users about the same mutation
// produces several records. Only the Read flag is mutable after creation.
type Notification struct {
	ID              uuid.UUID        `json:"id"`
	RecipientUserID uuid.UUID        `json:"recipient_user_id"`
	Type            NotificationType `json:"type"`
	Message         string           `json:"message"`
	RelatedTaskID   uuid.UUID        `json:"related_task_id,omitempty"`
	RelatedUserID   uuid.UUID        `json:"related_user_id,omitempty"`
	Read            bool             `json:"read"`
	CreatedAt       time.Time        `json:"created_at"`
}

// NewNotification creates a validated Notification. An empty message falls
// back to the type's default text. RelatedTaskID and RelatedUserID (the
// actor) are optional and may be uuid.Nil.
func NewNotification(
	notificationType NotificationType,
	recipientUserID uuid.UUID,
	relatedTaskID, relatedUserID uuid.UUID,
	message string,
) (*Notification, error) {
	if message == "" {
		message = notificationType.DefaultMessage()
	}

	notification := &Notification{
		ID:              uuid.New(),
		RecipientUserID: recipientUserID,
		Type:            notificationType,
		Message:         message,
		RelatedTaskID:   relatedTaskID,
		RelatedUserID:   relatedUserID,
		Read:            false,
		CreatedAt:       time.Now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks the notification's invariants.
func (n *Notification) Validate() error {
	if !n.Type.IsValid() {
		return ErrNotificationTypeInvalid
	}

	if n.RecipientUserID == uuid.Nil {
		return ErrNotificationRecipientEmpty
	}

	if n.Message == "" {
		return ErrNotificationMessageEmpty
	}

	return nil
}
