package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// ActivityStore implements store.ActivityStore on PostgreSQL. The activities
// table is append-only; no update or delete statements exist here.
type ActivityStore struct {
	db store.DBTX
}

// NewActivityStore creates an ActivityStore over the given connection.
func NewActivityStore(db store.DBTX) *ActivityStore {
	return &ActivityStore{db: db}
}

var _ store.ActivityStore = (*ActivityStore)(nil)

// Create implements store.ActivityStore.Create.
func (s *ActivityStore) Create(ctx context.Context, record *domain.ActivityRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	changeJSON, err := marshalNullable(record.Change)
	if err != nil {
		return fmt.Errorf("failed to encode activity change: %w", err)
	}
	metadataJSON, err := marshalNullable(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	query := `
		INSERT INTO activities (id, task_id, actor_user_id, type, change, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		record.ActorUserID,
		record.Type,
		changeJSON,
		metadataJSON,
		record.CreatedAt,
	)
	if err != nil {
		return store.NewStoreError("activity", "create", "insert failed", MapError(err))
	}

	return nil
}

// ListByTask implements store.ActivityStore.ListByTask.
func (s *ActivityStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
	limit int,
) ([]*domain.ActivityRecord, error) {
	query := `
		SELECT id, task_id, actor_user_id, type, change, metadata, created_at
		FROM activities
		WHERE task_id = $1
		ORDER BY created_at DESC
	`
	args := []any{taskID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("activity", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.ActivityRecord
	for rows.Next() {
		record, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("activity", "list", "row iteration failed", MapError(err))
	}

	return records, nil
}

func scanActivity(rows *sql.Rows) (*domain.ActivityRecord, error) {
	var (
		record       domain.ActivityRecord
		changeJSON   []byte
		metadataJSON []byte
	)

	err := rows.Scan(
		&record.ID,
		&record.TaskID,
		&record.ActorUserID,
		&record.Type,
		&changeJSON,
		&metadataJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}

	if len(changeJSON) > 0 {
		record.Change = &domain.ActivityChange{}
		if err := json.Unmarshal(changeJSON, record.Change); err != nil {
			return nil, fmt.Errorf("failed to decode activity change: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
	}

	return &record, nil
}

// marshalNullable encodes v to JSON, mapping nil values to SQL NULL so the
// column stays empty instead of holding the string "null".
func marshalNullable(v any) (any, error) {
	switch value := v.(type) {
	case *domain.ActivityChange:
		if value == nil {
			return nil, nil
		}
	case map[string]string:
		if len(value) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
