package engine

import (
	"context"
	"sync"
)

// queue hands closures from loader goroutines to the render thread.
type queue struct {
	lock     sync.Mutex
	fns      []func()
	inflight int
	closed   bool
	signal   chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

// start announces a job that will post exactly once.
func (q *queue) start() {
	q.lock.Lock()
	q.inflight++
	q.lock.Unlock()
}

func (q *queue) post(fn func()) {
	q.lock.Lock()
	if !q.closed {
		q.fns = append(q.fns, fn)
	}
	q.inflight--
	q.lock.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// drain runs every posted closure on the calling goroutine.
func (q *queue) drain() int {
	q.lock.Lock()
	fns := q.fns
	q.fns = nil
	q.lock.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// push queues fn without a matching start.
func (q *queue) push(fn func()) {
	q.start()
	q.post(fn)
}

// close drops every queued and future closure.
func (q *queue) close() {
	q.lock.Lock()
	q.closed = true
	q.fns = nil
	q.lock.Unlock()
}

func (q *queue) idle() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.inflight == 0 && len(q.fns) == 0
}

// wait drains until no job is in flight.
func (q *queue) wait(ctx context.Context) error {
	for {
		q.drain()
		if q.idle() {
			return nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
