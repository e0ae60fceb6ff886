package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// ActivityStore defines the interface for audit-trail persistence.
// Records are append-only: there are no update or delete operations.
type ActivityStore interface {
	// Create appends a new activity record. Records are immutable once
	// written. Returns ErrInvalidEntity (wrapping the validation error)
	// if the record fails domain validation.
	Create(ctx context.Context, record *domain.ActivityRecord) error

	// ListByTask retrieves a task's audit trail ordered by creation time
	// descending. A limit of 0 or less returns all records.
	ListByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]*domain.ActivityRecord, error)
}
