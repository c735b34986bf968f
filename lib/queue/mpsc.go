package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is a single element of the linked list
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// MPSC is a lock-free multi-producer single-consumer queue backed by a linked
// list. A background goroutine moves values from the list to the Recv channel.
type MPSC[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	out    chan T
	closed atomic.Bool
	length atomic.Int64

	// wakes the mover when values arrive or the queue is closed
	mu   sync.Mutex
	cond *sync.Cond
}

// NewMPSC creates a new queue and starts its mover goroutine
func NewMPSC[T any]() *MPSC[T] {
	// the list always starts with a dummy node
	sentinel := &node[T]{}

	q := &MPSC[T]{
		out: make(chan T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.move()

	return q
}

// Push appends a value. It returns false if the queue is closed.
func (q *MPSC[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// may fail if another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.length.Add(1)

				q.mu.Lock()
				q.cond.Signal()
				q.mu.Unlock()
				return true
			}
		} else {
			// help a producer that appended but did not advance the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin at low contention, yield at high contention
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// move sends values from the list to the output channel until the queue is
// closed and empty
func (q *MPSC[T]) move() {
	defer close(q.out)

	var zero T
	for {
		moved := false
		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			moved = true

			value := next.value
			q.head.Store(next)
			q.length.Add(-1)
			q.out <- value

			// release the value for the gc, next is the new dummy node
			next.value = zero
		}

		if !moved && q.closed.Load() {
			return
		}

		if !moved {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the consumer reads from. The channel is closed
// once the queue is closed and all values have been received.
func (q *MPSC[T]) Recv() <-chan T {
	return q.out
}

// Close rejects further pushes. Values already queued are still delivered.
func (q *MPSC[T]) Close() {
	q.closed.Store(true)

	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed returns true if the queue is closed
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the approximate number of values that have not been received
// by the mover goroutine yet
func (q *MPSC[T]) Len() int {
	return int(q.length.Load())
}
