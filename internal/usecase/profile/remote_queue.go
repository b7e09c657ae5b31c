package profile

import "sync"

// remoteQueue orders remote calls per session: each call starts only after
// the one queued before it for the same session has finished. Sessions do
// not wait on each other.
type remoteQueue struct {
	mu     sync.Mutex
	tails  map[string]chan struct{}
	resets map[string]int
}

func newRemoteQueue() *remoteQueue {
	return &remoteQueue{
		tails:  make(map[string]chan struct{}),
		resets: make(map[string]int),
	}
}

// push appends a call for sessionID. The caller waits on prev (nil when the
// queue was empty) and passes done to finish once its call returns.
func (q *remoteQueue) push(sessionID string) (prev <-chan struct{}, done chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if tail, ok := q.tails[sessionID]; ok {
		prev = tail
	}
	done = make(chan struct{})
	q.tails[sessionID] = done
	return prev, done
}

func (q *remoteQueue) finish(sessionID string, done chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	close(done)
	if q.tails[sessionID] == done {
		delete(q.tails, sessionID)
	}
}

// beginReset marks a queued remote delete for sessionID. Until endReset,
// the remote row is stale and must not be restored.
func (q *remoteQueue) beginReset(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resets[sessionID]++
}

func (q *remoteQueue) endReset(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.resets[sessionID] <= 1 {
		delete(q.resets, sessionID)
		return
	}
	q.resets[sessionID]--
}

func (q *remoteQueue) resetPending(sessionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resets[sessionID] > 0
}
