package evictingqueue

import "sync"

//
// EvictingQueue is a thread-safe queue structure that automatically maintains the desired maximum
// size by evicting its oldest element if a new element is being added when at capacity. It is
// modeled after the EvictingQueue class from the Google Guava library for Java.
//
type EvictingQueue[T any] struct {
	mu    sync.Mutex
	size  int
	queue []T
}

//
// New instantiates a new evicting queue with the specified maximum size. A non-positive size yields
// a queue that silently discards everything added to it.
//
func New[T any](maxSize int) *EvictingQueue[T] {
	if maxSize < 0 {
		maxSize = 0
	}

	return &EvictingQueue[T]{
		size:  maxSize,
		queue: make([]T, 0, maxSize),
	}
}

//
// Add appends the provided element to the evicting queue and evicts the oldest element if necessary
// to maintain its maximum size.
//
func (o *EvictingQueue[T]) Add(e T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.size == 0 {
		return
	}

	//
	// Remove the oldest element from the tail of the queue if we are currently at capacity.
	//
	if len(o.queue) == o.size {
		copy(o.queue, o.queue[1:])
		o.queue = o.queue[:len(o.queue)-1]
	}

	o.queue = append(o.queue, e)
}

//
// Snapshot returns a copy of the queue's contents, oldest first.
//
func (o *EvictingQueue[T]) Snapshot() []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]T, len(o.queue))
	copy(out, o.queue)

	return out
}

func (o *EvictingQueue[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}
