package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
)

// TaskStore defines the read-side interface over the task records this
// service consumes. Task writes belong to the CRUD surface outside this
// service; here tasks are only read to resolve event audiences, derive
// notification recipients, and drive the due-soon sweep.
type TaskStore interface {
	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListDueBetween retrieves tasks whose due date falls within [from, to]
	// and whose status is not completed, ordered by due date ascending.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error)
}
