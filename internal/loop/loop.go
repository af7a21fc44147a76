// Package loop provides the single-goroutine event queue that owns interview
// state. Background work (socket readers, tickers, HTTP calls) never touches
// that state directly; it posts closures that the owning goroutine runs.
package loop

import "sync"

// Poster schedules fn to run on the owning goroutine.
type Poster interface {
	Post(fn func())
}

// Queue is a Poster backed by a buffered channel. The owner drains C() and
// runs each closure in arrival order.
type Queue struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	return &Queue{
		ch:   make(chan func(), size),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the buffer is full and becomes a no-op
// once the queue is closed.
func (q *Queue) Post(fn func()) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.ch <- fn:
	case <-q.done:
	}
}

// C returns the channel the owner drains.
func (q *Queue) C() <-chan func() {
	return q.ch
}

// Done is closed when the queue is closed.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Close stops accepting posts. Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

// Drain runs every closure currently buffered without blocking and returns
// how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case fn := <-q.ch:
			fn()
			n++
		default:
			return n
		}
	}
}
