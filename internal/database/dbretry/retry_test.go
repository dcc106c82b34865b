package dbretry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crowdsift/crowdsift/internal/database/dbretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsRetryableError(nil))
	assert.False(t, dbretry.IsRetryableError(errors.New("syntax error")))

	assert.True(t, dbretry.IsRetryableError(errors.New("read tcp: connection reset by peer")))
	assert.True(t, dbretry.IsRetryableError(errors.New("dial tcp: connection refused")))
	assert.True(t, dbretry.IsRetryableError(errors.New("write: broken pipe")))
}

func TestOperationReturnsPermanentErrorsImmediately(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("report not found")
	calls := 0

	_, err := dbretry.Operation(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestOperationRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0

	result, err := dbretry.Operation(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestNoResultPassesThrough(t *testing.T) {
	t.Parallel()

	require.NoError(t, dbretry.NoResult(context.Background(), func(context.Context) error {
		return nil
	}))
}
