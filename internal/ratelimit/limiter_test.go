package ratelimit_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unlimitedverifier/free-email-verifier/internal/ratelimit"
)

func TestLimiter_FirstAcquireIsImmediate(t *testing.T) {
	l := ratelimit.New(time.Hour)

	assert.Zero(t, l.Delay())
	start := time.Now()
	passed, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, passed.Before(start))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_SpacesAcquisitions(t *testing.T) {
	const interval = 100 * time.Millisecond
	l := ratelimit.New(interval)
	ctx := context.Background()

	first, err := l.Acquire(ctx)
	require.NoError(t, err)

	assert.Greater(t, l.Delay(), time.Duration(0))
	assert.LessOrEqual(t, l.Delay(), interval)

	second, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.Sub(first), interval)
	assert.GreaterOrEqual(t, time.Since(first), interval)
}

func TestLimiter_BackToBackGapsNeverShort(t *testing.T) {
	const interval = 7 * time.Millisecond
	l := ratelimit.New(interval)
	ctx := context.Background()

	prev, err := l.Acquire(ctx)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		next, err := l.Acquire(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, next.Sub(prev), interval, "acquisition %d", i+1)
		prev = next
	}
}

func TestLimiter_NextSlotFollowsActualPass(t *testing.T) {
	const interval = 30 * time.Millisecond
	l := ratelimit.New(interval)
	ctx := context.Background()

	_, err := l.Acquire(ctx)
	require.NoError(t, err)

	// pass the gate late: the following slot counts from this pass
	time.Sleep(interval + 20*time.Millisecond)
	late, err := l.Acquire(ctx)
	require.NoError(t, err)

	next, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, next.Sub(late), interval)
}

func TestLimiter_NoWaitAfterIntervalElapsed(t *testing.T) {
	const interval = 30 * time.Millisecond
	l := ratelimit.New(interval)
	ctx := context.Background()

	_, err := l.Acquire(ctx)
	require.NoError(t, err)

	time.Sleep(2 * interval)

	assert.Zero(t, l.Delay())
	start := time.Now()
	_, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), interval)
}

func TestLimiter_ConcurrentCallersAreSerialized(t *testing.T) {
	const interval = 40 * time.Millisecond
	l := ratelimit.New(interval)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			passed, err := l.Acquire(ctx)
			assert.NoError(t, err)
			mu.Lock()
			times = append(times, passed)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	require.Len(t, times, 4)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), interval)
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l := ratelimit.New(time.Hour)

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)
	delay := l.Delay()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// the abandoned wait did not move the slot
	assert.LessOrEqual(t, l.Delay(), delay)
}

func TestLimiter_CancelledWhileQueued(t *testing.T) {
	l := ratelimit.New(time.Hour)

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)

	// first waiter holds the gate for the rest of the hour
	holderCtx, stopHolder := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Acquire(holderCtx)
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	stopHolder()
	<-done
}

func TestLimiter_Disabled(t *testing.T) {
	l := ratelimit.New(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		start := time.Now()
		_, err := l.Acquire(ctx)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	}
	assert.Zero(t, l.Delay())
	assert.Zero(t, l.Interval())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := l.Acquire(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
