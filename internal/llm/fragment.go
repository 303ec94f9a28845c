// Package llm holds the clients for the local generative model and the remote
// inference endpoint.
package llm

import "sync"

// Fragment is one piece of generated text. The last fragment of a
// generation has Done set; a failed generation ends with Err set.
type Fragment struct {
	Text string
	Done bool
	Err  error
}

// FragmentBuffer is a bounded queue of fragments for a single consumer.
// When the consumer falls behind the oldest buffered fragment is dropped,
// so the newest fragment is always retained. Order is never changed.
type FragmentBuffer struct {
	mu      sync.Mutex
	ch      chan Fragment
	dropped int
}

func NewFragmentBuffer(capacity int) *FragmentBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &FragmentBuffer{ch: make(chan Fragment, capacity)}
}

// Publish enqueues f, evicting the oldest fragment if the buffer is full.
// It never blocks and reports whether a fragment was evicted.
func (b *FragmentBuffer) Publish(f Fragment) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := false
	for {
		select {
		case b.ch <- f:
			return evicted
		default:
		}

		select {
		case <-b.ch:
			evicted = true
			b.dropped++
		default:
		}
	}
}

// Fragments is the consumer side of the buffer.
func (b *FragmentBuffer) Fragments() <-chan Fragment {
	return b.ch
}

// Drain discards everything currently buffered and returns how many
// fragments were removed.
func (b *FragmentBuffer) Drain() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for {
		select {
		case <-b.ch:
			n++
		default:
			return n
		}
	}
}

// Dropped returns the number of fragments evicted so far.
func (b *FragmentBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
