package store

import "sync"

// Subscriber delivers updates to one callback on its own goroutine. Each
// update is a full snapshot, so a pending update that has not been delivered
// yet is replaced by the newer one.
type Subscriber[T any] struct {
	updates chan T
	done    chan struct{}
	once    sync.Once
}

func NewSubscriber[T any](fn func(T)) *Subscriber[T] {
	s := &Subscriber[T]{
		updates: make(chan T, 1),
		done:    make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-s.done:
				return
			case v := <-s.updates:
				fn(v)
			}
		}
	}()
	return s
}

// Push queues v. Callers serialize pushes to keep updates in order.
func (s *Subscriber[T]) Push(v T) {
	for {
		select {
		case s.updates <- v:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

// Stop ends delivery. It is safe to call more than once.
func (s *Subscriber[T]) Stop() {
	s.once.Do(func() { close(s.done) })
}
