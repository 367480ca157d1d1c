package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCapsConcurrency(t *testing.T) {
	pool := New("exports", 2, nil)
	release := make(chan struct{})
	var running atomic.Int32
	var peak atomic.Int32

	task := func(context.Context) {
		current := running.Add(1)
		for {
			seen := peak.Load()
			if current <= seen || peak.CompareAndSwap(seen, current) {
				break
			}
		}
		<-release
		running.Add(-1)
	}

	assert.True(t, pool.TryGo(context.Background(), task))
	assert.True(t, pool.TryGo(context.Background(), task))
	assert.False(t, pool.TryGo(context.Background(), task))
	assert.Equal(t, 2, pool.InFlight())

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
	assert.Equal(t, int32(2), peak.Load())
	assert.Equal(t, 0, pool.InFlight())
	assert.False(t, pool.TryGo(context.Background(), task), "closed pool must not admit")
}

func TestPoolTaskSurvivesCallerCancellation(t *testing.T) {
	pool := New("exports", 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	started := make(chan struct{})

	require.True(t, pool.TryGo(ctx, func(taskCtx context.Context) {
		close(started)
		time.Sleep(10 * time.Millisecond)
		result <- taskCtx.Err()
	}))
	<-started
	cancel()

	assert.NoError(t, <-result)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPoolRecoversPanics(t *testing.T) {
	pool := New("exports", 1, nil)
	require.True(t, pool.TryGo(context.Background(), func(context.Context) { panic("boom") }))
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, 0, pool.InFlight())
}

func TestShutdownHonoursDeadline(t *testing.T) {
	pool := New("exports", 1, nil)
	block := make(chan struct{})
	defer close(block)
	require.True(t, pool.TryGo(context.Background(), func(context.Context) { <-block }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)
}
