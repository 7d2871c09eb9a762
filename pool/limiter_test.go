package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AcquireRelease(t *testing.T) {
	l := NewLimiter(2)

	ok, inflight, _ := l.Acquire(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 1, inflight)

	ok, inflight, _ = l.Acquire(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 2, inflight)

	ok, _, waited := l.Acquire(20 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, waited, 20*time.Millisecond)

	l.Release()
	ok, _, _ = l.Acquire(time.Millisecond)
	assert.True(t, ok)
}

func TestLimiter_WakesWaiter(t *testing.T) {
	l := NewLimiter(1)
	ok, _, _ := l.Acquire(time.Millisecond)
	require.True(t, ok)

	var wg sync.WaitGroup
	wg.Add(1)
	granted := false
	go func() {
		defer wg.Done()
		granted, _, _ = l.Acquire(2 * time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	l.Release()
	wg.Wait()

	assert.True(t, granted)
}

func TestLimiter_ReleaseNeverGoesNegative(t *testing.T) {
	l := NewLimiter(1)
	l.Release()
	l.Release()
	assert.Equal(t, 0, l.Inflight())

	ok, _, _ := l.Acquire(time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 1, l.Inflight())
}

func TestLimiter_ClampsCapacity(t *testing.T) {
	l := NewLimiter(0)
	assert.Equal(t, 1, l.Capacity())
}
