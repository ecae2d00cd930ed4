package rest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlotPool_AcquireRelease(t *testing.T) {
	pool := NewSlotPool(2, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, pool.Acquire(ctx))
	require.NoError(t, pool.Acquire(ctx))
	require.Equal(t, 2, pool.Metrics().InUse)

	require.ErrorIs(t, pool.Acquire(ctx), ErrBusy)

	pool.Release()
	require.NoError(t, pool.Acquire(ctx))
	pool.Release()
	pool.Release()

	m := pool.Metrics()
	require.Equal(t, 2, m.PoolSize)
	require.Zero(t, m.InUse)
	require.Equal(t, int64(3), m.TotalAcquired)
	require.Equal(t, int64(3), m.TotalReleased)
	require.Equal(t, int64(1), m.AcquireFailures)
}

func TestSlotPool_Defaults(t *testing.T) {
	pool := NewSlotPool(0, 0)
	require.Equal(t, DefaultPoolSize, pool.Metrics().PoolSize)
	require.Equal(t, DefaultAcquireTimeout, pool.timeout)
}

func TestSlotPool_ContextCancelled(t *testing.T) {
	pool := NewSlotPool(1, time.Minute)
	require.NoError(t, pool.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, pool.Acquire(ctx), context.DeadlineExceeded)
}

func TestSlotPool_Close(t *testing.T) {
	pool := NewSlotPool(1, time.Second)
	require.NoError(t, pool.Acquire(context.Background()))

	pool.Close()
	pool.Close()
	pool.Release()
	require.ErrorIs(t, pool.Acquire(context.Background()), ErrPoolClosed)
}
