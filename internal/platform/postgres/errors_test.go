package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/store"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "some_constraint"}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		wantIs   error
		passthru bool
	}{
		{"nil", nil, nil, true},
		{"no rows", sql.ErrNoRows, store.ErrNotFound, false},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound, false},
		{"unique violation", pgError(uniqueViolationCode), store.ErrDuplicate, false},
		{"foreign key violation", pgError(foreignKeyViolationCode), store.ErrInvalidEntity, false},
		{"check violation", pgError(checkViolationCode), store.ErrInvalidEntity, false},
		{"not null violation", pgError(notNullViolationCode), store.ErrInvalidEntity, false},
		{"unrelated error", errors.New("connection refused"), nil, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)
			if tc.passthru {
				assert.Equal(t, tc.err, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.wantIs)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgError(uniqueViolationCode))))
	assert.False(t, IsUniqueViolation(pgError(checkViolationCode)))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, store.ErrNotificationNotFound))

	err := CheckRowsAffected(fakeResult{rows: 0}, store.ErrNotificationNotFound)
	assert.ErrorIs(t, err, store.ErrNotificationNotFound)

	err = CheckRowsAffected(fakeResult{err: errors.New("driver broke")}, store.ErrNotificationNotFound)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotificationNotFound)
}
