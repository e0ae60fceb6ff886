package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrNotificationNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrTaskNotFound))
	assert.True(t, store.IsNotFoundError(
		fmt.Errorf("lookup failed: %w", store.ErrTaskNotFound)))

	assert.False(t, store.IsNotFoundError(store.ErrDuplicate))
	assert.False(t, store.IsNotFoundError(errors.New("something else")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := store.ErrNotificationNotFound
	err := store.NewStoreError("notification", "mark_read", "row missing", inner)

	assert.Contains(t, err.Error(), "mark_read operation on notification failed")
	assert.ErrorIs(t, err, store.ErrNotificationNotFound,
		"wrapped sentinels stay visible through errors.Is")

	bare := store.NewStoreError("activity", "create", "rejected", nil)
	assert.Equal(t, "create operation on activity failed: rejected", bare.Error())
}
