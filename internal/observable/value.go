// Package observable provides a value holder that replays its latest value
// to new subscribers and publishes every update to existing ones.
package observable

import "sync"

// Value holds the latest T and fans updates out to subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// Subscription receives updates on C until Unsubscribe is called or the
// Value is closed, after which C is closed.
//
// C buffers a single value. When a subscriber falls behind, the pending
// value is replaced by the newer one, so a reader always sees the latest
// value and never a backlog.
type Subscription[T any] struct {
	C <-chan T

	ch     chan T
	parent *Value[T]
	once   sync.Once
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[*Subscription[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores next, publishes it to every subscriber and returns it.
// Setting a closed Value only updates the stored value.
func (v *Value[T]) Set(next T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.value = next
	for sub := range v.subs {
		sub.offer(next)
	}
	return next
}

// Subscribe returns a subscription that immediately holds the current value.
// Subscribing to a closed Value returns an already-closed subscription.
func (v *Value[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)
	sub := &Subscription[T]{C: ch, ch: ch, parent: v}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	ch <- v.value
	v.subs[sub] = struct{}{}
	return sub
}

// Subscribers returns the number of live subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	for sub := range v.subs {
		sub.closeChan()
		delete(v.subs, sub)
	}
}

// Unsubscribe stops delivery and closes C. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	delete(s.parent.subs, s)
	s.closeChan()
}

// offer delivers value without blocking, replacing a pending undelivered
// value. Callers hold the parent lock, so offers are never concurrent.
func (s *Subscription[T]) offer(value T) {
	select {
	case s.ch <- value:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- value
}

func (s *Subscription[T]) closeChan() {
	s.once.Do(func() { close(s.ch) })
}
