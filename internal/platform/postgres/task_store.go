package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// TaskStore implements store.TaskStore on PostgreSQL. Read-only: the CRUD
// surface that owns task writes maintains this table.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a TaskStore over the given connection.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = `
	id, project_id, creator_id, assignee_id, title, description,
	status, priority, tags, due_date, attachments, created_at, updated_at
`

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "query failed", mapped)
	}
	return task, nil
}

// ListDueBetween implements store.TaskStore.ListDueBetween.
func (s *TaskStore) ListDueBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE due_date >= $1 AND due_date <= $2 AND status <> $3
		ORDER BY due_date ASC`

	rows, err := s.db.QueryContext(ctx, query, from, to, domain.TaskStatusCompleted)
	if err != nil {
		return nil, store.NewStoreError("task", "list_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list_due", "scan failed", MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list_due", "row iteration failed", MapError(err))
	}

	return tasks, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task            domain.Task
		assigneeID      uuid.NullUUID
		description     sql.NullString
		tagsJSON        []byte
		dueDate         sql.NullTime
		attachmentsJSON []byte
	)

	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.CreatorID,
		&assigneeID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&tagsJSON,
		&dueDate,
		&attachmentsJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.AssigneeID = assigneeID.UUID
	task.Description = description.String
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode task tags: %w", err)
		}
	}
	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &task.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode task attachments: %w", err)
		}
	}

	return &task, nil
}
