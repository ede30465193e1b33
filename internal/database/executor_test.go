package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasLimitClause(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM user", false},
		{"SELECT * FROM user LIMIT 1", true},
		{"select * from user limit 5", true},
		{"SELECT * FROM user WHERE name = 'unlimited'", false},
		{"SELECT * FROM user\nLIMIT 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, hasLimitClause(tt.query))
		})
	}
}

func TestClassify(t *testing.T) {
	dup := errors.New("Database index `user_email_unique` already contains 'a@x.io', with record `user:abc`")
	err := classify(dup, "CREATE user CONTENT $data")
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NotErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, dup)

	other := errors.New("parse error")
	err = classify(other, "SELEC")
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "Query: SELEC")
}

func TestGetTimeoutFromContext(t *testing.T) {
	ctx, cancel := getTimeoutFromContext(context.Background(), time.Minute, ContextKeyQueryTimeout)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	override := context.WithValue(context.Background(), ContextKeyQueryTimeout, time.Second)
	ctx2, cancel2 := getTimeoutFromContext(override, time.Minute, ContextKeyQueryTimeout)
	defer cancel2()
	deadline, ok = ctx2.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)

	// An execute override does not leak into query timeouts.
	ctx3, cancel3 := getTimeoutFromContext(WithExecuteTimeout(context.Background(), time.Second), time.Minute, ContextKeyQueryTimeout)
	defer cancel3()
	deadline, _ = ctx3.Deadline()
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func TestExecutor(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type row struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	require.NoError(t, Execute(ctx, db, "CREATE user SET name = $name, email = $email", map[string]any{"name": "One", "email": "one@example.com"}))
	require.NoError(t, Execute(ctx, db, "CREATE user SET name = $name, email = $email", map[string]any{"name": "Two", "email": "two@example.com"}))

	t.Run("Query returns all rows", func(t *testing.T) {
		rows, err := Query[row](ctx, db, "SELECT name, email FROM user ORDER BY email", nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "one@example.com", rows[0].Email)
	})

	t.Run("QueryOne limits to one", func(t *testing.T) {
		r, err := QueryOne[row](ctx, db, "SELECT name, email FROM user", nil)
		require.NoError(t, err)
		require.NotNil(t, r)
	})

	t.Run("QueryOne returns nil for no rows", func(t *testing.T) {
		r, err := QueryOne[row](ctx, db, "SELECT * FROM user WHERE email = $email", map[string]any{"email": "ghost@example.com"})
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("unique index violation", func(t *testing.T) {
		err := Execute(ctx, db, "CREATE user SET name = 'Dup', email = 'one@example.com'", nil)
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})
}
