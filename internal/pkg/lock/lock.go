// Package lock provides the two per-session locks used by the profile state
// manager: a FIFO sync lock that serializes saves, and a fail-fast navigation
// lock that rejects duplicate onboarding completions.
package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrLockContention = errors.New("lock busy")

// DefaultNavigationRelease is how long the navigation lock stays held after
// the wrapped operation returns.
const DefaultNavigationRelease = 50 * time.Millisecond

// SyncLock admits one holder at a time. Waiters are granted the lock in the
// order they called Do.
type SyncLock struct {
	sem *semaphore.Weighted
}

func NewSyncLock() *SyncLock {
	return &SyncLock{sem: semaphore.NewWeighted(1)}
}

// Do runs fn while holding the lock. It returns ctx.Err() if the context is
// done before the lock is acquired.
func (l *SyncLock) Do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}

// NavigationLock never queues: a call made while it is held fails with
// ErrLockContention.
type NavigationLock struct {
	held    atomic.Bool
	release time.Duration
}

func NewNavigationLock(release time.Duration) *NavigationLock {
	if release < 0 {
		release = 0
	}
	return &NavigationLock{release: release}
}

func (l *NavigationLock) Do(fn func() error) error {
	return l.do(fn, nil)
}

// do is Do with a callback that fires once the lock no longer belongs to
// this call: right away on contention, otherwise after the delayed release.
func (l *NavigationLock) do(fn func() error, cleared func()) error {
	if !l.held.CompareAndSwap(false, true) {
		if cleared != nil {
			cleared()
		}
		return ErrLockContention
	}
	defer func() {
		unlock := func() {
			l.held.Store(false)
			if cleared != nil {
				cleared()
			}
		}
		if l.release == 0 {
			unlock()
			return
		}
		time.AfterFunc(l.release, unlock)
	}()
	return fn()
}

func (l *NavigationLock) Held() bool {
	return l.held.Load()
}

// Set is the pair of locks owned by one session.
type Set struct {
	Sync       *SyncLock
	Navigation *NavigationLock
}

type entry struct {
	set  *Set
	refs int
}

// Registry hands out one Set per session id. A Set is kept only while some
// call holds or waits on one of its locks, so idle sessions cost nothing.
type Registry struct {
	mu      sync.Mutex
	sets    map[string]*entry
	release time.Duration
}

func NewRegistry(navigationRelease time.Duration) *Registry {
	return &Registry{sets: make(map[string]*entry), release: navigationRelease}
}

// Sync runs fn under the session's sync lock.
func (r *Registry) Sync(ctx context.Context, sessionID string, fn func() error) error {
	s := r.acquire(sessionID)
	defer r.drop(sessionID)
	return s.Sync.Do(ctx, fn)
}

// Navigate runs fn under the session's navigation lock. The Set stays
// registered until the lock's delayed release has fired.
func (r *Registry) Navigate(sessionID string, fn func() error) error {
	s := r.acquire(sessionID)
	return s.Navigation.do(fn, func() { r.drop(sessionID) })
}

// Len reports how many sessions currently have a Set.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}

func (r *Registry) acquire(sessionID string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sets[sessionID]
	if !ok {
		e = &entry{set: &Set{Sync: NewSyncLock(), Navigation: NewNavigationLock(r.release)}}
		r.sets[sessionID] = e
	}
	e.refs++
	return e.set
}

func (r *Registry) drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sets[sessionID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.sets, sessionID)
	}
}
