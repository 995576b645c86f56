package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForShutdown_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called bool
	err := WaitForShutdown(ctx, time.Second, func(ctx context.Context) error {
		called = true
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestWaitForShutdown_PropagatesError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("http server shutdown failed")
	err := WaitForShutdown(ctx, time.Second, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
