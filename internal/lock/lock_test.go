package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "raffle-1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "raffle-1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := l.Acquire(ctx, "raffle-2")
	require.NoError(t, err)
	other()

	release()
	release() // second call is a no-op

	again, err := l.Acquire(ctx, "raffle-1")
	require.NoError(t, err)
	again()
}
