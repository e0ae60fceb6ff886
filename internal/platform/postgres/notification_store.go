package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// NotificationStore implements store.NotificationStore on PostgreSQL.
type NotificationStore struct {
	db store.DBTX
}

// NewNotificationStore creates a NotificationStore over the given connection.
func NewNotificationStore(db store.DBTX) *NotificationStore {
	return &NotificationStore{db: db}
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create.
func (s *NotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO notifications
			(id, recipient_user_id, type, message, related_task_id, related_user_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientUserID,
		notification.Type,
		notification.Message,
		nullableUUID(notification.RelatedTaskID),
		nullableUUID(notification.RelatedUserID),
		notification.Read,
		notification.CreatedAt,
	)
	if err != nil {
		return store.NewStoreError("notification", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.NotificationStore.GetByID.
func (s *NotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	query := `
		SELECT id, recipient_user_id, type, message, related_task_id, related_user_id, read, created_at
		FROM notifications
		WHERE id = $1
	`

	var (
		notification  domain.Notification
		relatedTaskID uuid.NullUUID
		relatedUserID uuid.NullUUID
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.RecipientUserID,
		&notification.Type,
		&notification.Message,
		&relatedTaskID,
		&relatedUserID,
		&notification.Read,
		&notification.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrNotificationNotFound
		}
		return nil, store.NewStoreError("notification", "get", "query failed", mapped)
	}

	notification.RelatedTaskID = relatedTaskID.UUID
	notification.RelatedUserID = relatedUserID.UUID

	return &notification, nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient.
func (s *NotificationStore) ListByRecipient(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_user_id, type, message, related_task_id, related_user_id, read, created_at
		FROM notifications
		WHERE recipient_user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("notification", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var notifications []*domain.Notification
	for rows.Next() {
		var (
			notification  domain.Notification
			relatedTaskID uuid.NullUUID
			relatedUserID uuid.NullUUID
		)
		err := rows.Scan(
			&notification.ID,
			&notification.RecipientUserID,
			&notification.Type,
			&notification.Message,
			&relatedTaskID,
			&relatedUserID,
			&notification.Read,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, store.NewStoreError("notification", "list", "scan failed", MapError(err))
		}
		notification.RelatedTaskID = relatedTaskID.UUID
		notification.RelatedUserID = relatedUserID.UUID
		notifications = append(notifications, &notification)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("notification", "list", "row iteration failed", MapError(err))
	}

	return notifications, nil
}

// MarkRead implements store.NotificationStore.MarkRead.
func (s *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("notification", "mark_read", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}

// MarkAllRead implements store.NotificationStore.MarkAllRead. Updating zero
// rows is fine: the operation is idempotent.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_user_id = $1 AND read = FALSE`,
		userID)
	if err != nil {
		return store.NewStoreError("notification", "mark_all_read", "update failed", MapError(err))
	}
	return nil
}

// CountUnread implements store.NotificationStore.CountUnread.
func (s *NotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_user_id = $1 AND read = FALSE`,
		userID).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("notification", "count_unread", "query failed", MapError(err))
	}
	return count, nil
}

// Delete implements store.NotificationStore.Delete.
func (s *NotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("notification", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}

// nullableUUID maps uuid.Nil to SQL NULL.
func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
