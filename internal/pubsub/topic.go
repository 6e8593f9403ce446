// Package pubsub provides a small synchronous publish/subscribe topic.
package pubsub

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/monitoring"
)

// Subscriber receives events of type T and is identified by a stable id.
type Subscriber[T any] interface {
	ID() string
	OnEvent(event T) error
}

// Func adapts a plain function into a Subscriber.
type Func[T any] struct {
	id string
	fn func(T) error
}

// NewFunc wraps fn as a Subscriber with the given id.
func NewFunc[T any](id string, fn func(T) error) Func[T] {
	return Func[T]{id: id, fn: fn}
}

// ID returns the subscriber id.
func (f Func[T]) ID() string { return f.id }

// OnEvent calls the wrapped function.
func (f Func[T]) OnEvent(event T) error { return f.fn(event) }

// Topic fans events out to its subscribers in subscription order. Delivery
// is synchronous on the publishing goroutine. A subscriber that returns an
// error or panics is logged and does not affect the others.
type Topic[T any] struct {
	name string

	mu   sync.RWMutex
	subs []Subscriber[T]
}

// NewTopic creates an empty topic. The name only appears in log lines.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Add registers s. Ids are not checked for uniqueness.
func (t *Topic[T]) Add(s Subscriber[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, s)
}

// Subscribe registers fn under id.
func (t *Topic[T]) Subscribe(id string, fn func(T) error) {
	t.Add(NewFunc(id, fn))
}

// SubscribeFunc registers fn under a generated id and returns that id.
func (t *Topic[T]) SubscribeFunc(fn func(T) error) string {
	id := uuid.New().String()
	t.Subscribe(id, fn)
	return id
}

// Unsubscribe removes every subscriber registered under id and returns how
// many were removed.
func (t *Topic[T]) Unsubscribe(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make([]Subscriber[T], 0, len(t.subs))
	for _, s := range t.subs {
		if s.ID() != id {
			kept = append(kept, s)
		}
	}
	removed := len(t.subs) - len(kept)
	t.subs = kept
	return removed
}

// Len returns the number of registered subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Publish delivers event to every subscriber registered at the time of the
// call and returns the number of subscribers that handled it without error.
func (t *Topic[T]) Publish(event T) int {
	t.mu.RLock()
	subs := make([]Subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if err := t.deliver(s, event); err != nil {
			monitoring.Logf("pubsub %s: subscriber %s failed: %v", t.name, s.ID(), err)
			continue
		}
		delivered++
	}
	return delivered
}

func (t *Topic[T]) deliver(s Subscriber[T], event T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.OnEvent(event)
}
