package event

import "sync"

// Queue hands events from any goroutine to the single game loop goroutine.
type Queue struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func NewQueue(size int) *Queue {
	return &Queue{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Post - enqueues ev. Returns false once the queue is closed.
func (that *Queue) Post(ev Event) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.events <- ev:
		return true
	case <-that.done:
		return false
	}
}

func (that *Queue) Events() <-chan Event {
	return that.events
}

// Done is closed when the consumer stops.
func (that *Queue) Done() <-chan struct{} {
	return that.done
}

// Close - unblocks every pending and future Post.
func (that *Queue) Close() {
	that.once.Do(func() {
		close(that.done)
	})
}
