package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

// failingDB fails every statement with a fixed error.
type failingDB struct {
	err error
}

func (d failingDB) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, d.err
}

func (d failingDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, d.err
}

func (d failingDB) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestStoreFailuresCarryOperationContext(t *testing.T) {
	t.Parallel()

	driverErr := errors.New("connection refused")
	ctx := context.Background()

	record, err := domain.NewActivityRecord(
		domain.ActivityTaskCreated, uuid.New(), uuid.New(), nil, nil)
	require.NoError(t, err)

	notification, err := domain.NewNotification(
		domain.NotificationTaskAssigned, uuid.New(), uuid.Nil, uuid.Nil, "")
	require.NoError(t, err)

	testCases := []struct {
		name          string
		run           func(db store.DBTX) error
		wantEntity    string
		wantOperation string
	}{
		{
			"activity create",
			func(db store.DBTX) error {
				return NewActivityStore(db).Create(ctx, record)
			},
			"activity", "create",
		},
		{
			"activity list",
			func(db store.DBTX) error {
				_, err := NewActivityStore(db).ListByTask(ctx, uuid.New(), 0)
				return err
			},
			"activity", "list",
		},
		{
			"notification create",
			func(db store.DBTX) error {
				return NewNotificationStore(db).Create(ctx, notification)
			},
			"notification", "create",
		},
		{
			"notification mark read",
			func(db store.DBTX) error {
				return NewNotificationStore(db).MarkRead(ctx, uuid.New())
			},
			"notification", "mark_read",
		},
		{
			"notification delete",
			func(db store.DBTX) error {
				return NewNotificationStore(db).Delete(ctx, uuid.New())
			},
			"notification", "delete",
		},
		{
			"task list due",
			func(db store.DBTX) error {
				_, err := NewTaskStore(db).ListDueBetween(
					ctx, record.CreatedAt, record.CreatedAt)
				return err
			},
			"task", "list_due",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.run(failingDB{err: driverErr})
			require.Error(t, err)

			var storeErr *store.StoreError
			require.ErrorAs(t, err, &storeErr,
				"infrastructure failures carry entity and operation context")
			assert.Equal(t, tc.wantEntity, storeErr.Entity)
			assert.Equal(t, tc.wantOperation, storeErr.Operation)
			assert.ErrorIs(t, err, driverErr,
				"the driver error stays visible through the wrap")
		})
	}
}

func TestStoreFailureKeepsSentinelVisible(t *testing.T) {
	t.Parallel()

	notification, err := domain.NewNotification(
		domain.NotificationTaskAssigned, uuid.New(), uuid.Nil, uuid.Nil, "")
	require.NoError(t, err)

	db := failingDB{err: pgError(uniqueViolationCode)}
	err = NewNotificationStore(db).Create(context.Background(), notification)

	assert.ErrorIs(t, err, store.ErrDuplicate,
		"callers keep matching sentinels with errors.Is through the context wrap")
}
