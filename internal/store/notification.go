package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	// Create saves a new notification.
	// Returns ErrInvalidEntity if the notification fails domain validation.
	Create(ctx context.Context, notification *domain.Notification) error

	// GetByID retrieves a notification by its unique ID.
	// Returns ErrNotificationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// ListByRecipient retrieves a user's notifications ordered by creation
	// time descending, capped at limit. A limit of 0 or less returns all.
	ListByRecipient(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)

	// MarkRead sets the read flag on a single notification.
	// Returns ErrNotificationNotFound if it does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead sets the read flag on all of a user's unread
	// notifications. Calling it with nothing unread is a no-op.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)

	// Delete removes a notification.
	// Returns ErrNotificationNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
