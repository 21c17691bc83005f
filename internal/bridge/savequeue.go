package bridge

import (
	"context"
	"sync"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

// SaveQueue serializes draft saves. Issue order is preserved; a later save
// for the same module supersedes a pending one in place, so the server only
// ever sees the freshest body per slot.
type SaveQueue struct {
	client *Client

	mu      sync.Mutex
	cond    *sync.Cond
	entries []*saveEntry
	index   map[string]*saveEntry
	closed  bool
	done    chan struct{}
}

type saveEntry struct {
	activityID string
	moduleID   string
	body       *body.Body
	waiters    []chan error
}

func NewSaveQueue(client *Client) *SaveQueue {
	q := &SaveQueue{
		client: client,
		index:  make(map[string]*saveEntry),
		done:   make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Enqueue schedules a save. The returned channel receives exactly one
// result once the request settles. If a save for the same module is still
// pending its payload is replaced and both callers observe the one settle.
func (q *SaveQueue) Enqueue(activityID, moduleID string, b *body.Body) <-chan error {
	key := activityID + "/" + moduleID
	result := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		result <- context.Canceled
		return result
	}
	if pending, ok := q.index[key]; ok {
		pending.body = b
		pending.waiters = append(pending.waiters, result)
		return result
	}
	entry := &saveEntry{activityID: activityID, moduleID: moduleID, body: b, waiters: []chan error{result}}
	q.entries = append(q.entries, entry)
	q.index[key] = entry
	q.cond.Signal()
	return result
}

func (q *SaveQueue) run() {
	for {
		q.mu.Lock()
		for len(q.entries) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed && len(q.entries) == 0 {
			q.mu.Unlock()
			close(q.done)
			return
		}
		entry := q.entries[0]
		q.entries = q.entries[1:]
		delete(q.index, entry.activityID+"/"+entry.moduleID)
		q.mu.Unlock()

		err := q.client.SaveDraft(context.Background(), entry.activityID, entry.moduleID, entry.body)
		if err != nil {
			logger.Log.Warn("save queue: draft save failed",
				zap.String("activity", entry.activityID),
				zap.String("module", entry.moduleID),
				zap.Error(err))
		}

		q.mu.Lock()
		waiters := entry.waiters
		q.mu.Unlock()
		for _, w := range waiters {
			w <- err
		}
	}
}

// Close drains the queue and stops the worker.
func (q *SaveQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}
