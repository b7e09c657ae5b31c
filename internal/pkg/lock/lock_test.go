package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLock_FIFO(t *testing.T) {
	l := NewSyncLock()

	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	var mu sync.Mutex
	order := make([]int, 0, 5)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.Do(context.Background(), func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// let waiter i enqueue before i+1
		time.Sleep(10 * time.Millisecond)
	}

	close(hold)
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSyncLock_ContextCancelledWhileWaiting(t *testing.T) {
	l := NewSyncLock()
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSyncLock_PropagatesError(t *testing.T) {
	l := NewSyncLock()
	boom := errors.New("boom")
	assert.ErrorIs(t, l.Do(context.Background(), func() error { return boom }), boom)
	require.NoError(t, l.Do(context.Background(), func() error { return nil }))
}

func TestNavigationLock_FailsFastAndSelfClears(t *testing.T) {
	l := NewNavigationLock(30 * time.Millisecond)

	inside := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.Do(func() error {
			close(inside)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}()
	<-inside

	assert.ErrorIs(t, l.Do(func() error { return nil }), ErrLockContention)
	require.NoError(t, <-done)

	// still held during the release window
	assert.True(t, l.Held())
	assert.ErrorIs(t, l.Do(func() error { return nil }), ErrLockContention)

	assert.Eventually(t, func() bool { return !l.Held() }, time.Second, 5*time.Millisecond)
	assert.NoError(t, l.Do(func() error { return nil }))
}

func TestRegistry_SharesSetWhileHeld(t *testing.T) {
	r := NewRegistry(0)

	inside := make(chan struct{})
	hold := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- r.Sync(context.Background(), "a", func() error {
			close(inside)
			<-hold
			return nil
		})
	}()
	<-inside
	assert.Equal(t, 1, r.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Sync(ctx, "a", func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded, "same session waits on the same lock")

	require.NoError(t, r.Sync(context.Background(), "b", func() error { return nil }))
	assert.Equal(t, 1, r.Len())

	close(hold)
	require.NoError(t, <-done)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ReleasesIdleSessions(t *testing.T) {
	r := NewRegistry(0)
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("s-%d", i)
		require.NoError(t, r.Sync(context.Background(), id, func() error { return nil }))
		require.NoError(t, r.Navigate(id, func() error { return nil }))
	}
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_NavigationKeptUntilReleased(t *testing.T) {
	r := NewRegistry(30 * time.Millisecond)

	require.NoError(t, r.Navigate("a", func() error { return nil }))
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, r.Navigate("a", func() error { return nil }), ErrLockContention)

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, r.Navigate("a", func() error { return nil }))
}
