package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/cursorkeep/internal/event/topic"
)

// Handler processes an event. The event is type-erased; use Payload to
// recover the typed payload.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// ErrorHandler receives handler failures, including recovered panics.
type ErrorHandler func(err error)

// Subscription is an active registration on the bus.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	active  atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active.Load() }

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
	Subscribers   int
}

// Option configures a Bus.
type Option func(*Bus)

// WithErrorHandler sets the callback for handler errors and panics.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bus) {
		if h != nil {
			b.onError = h
		}
	}
}

// Bus delivers events synchronously on the publisher's goroutine.
// Handlers may publish further events; subscribers that share state with
// other goroutines serialize themselves.
type Bus struct {
	mu      sync.RWMutex
	subs    []*Subscription
	closed  bool
	onError ErrorHandler

	published atomic.Uint64
	delivered atomic.Uint64
	errored   atomic.Uint64
	panicked  atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{onError: func(error) {}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
	}
	sub.active.Store(true)
	b.subs = append(b.subs, sub)
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			s.active.Store(false)
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to all matching subscriptions in registration
// order. Handler failures are reported to the error handler and never
// returned; the error result only covers invalid events and a closed bus.
// An event topic must be concrete: wildcards belong to subscription patterns.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: topic %q", ErrInvalidEvent, t)
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	var matched []*Subscription
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)

	for _, s := range matched {
		if !s.IsActive() {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := b.dispatch(ctx, s, t, event); err != nil {
			b.onError(err)
			continue
		}
		b.delivered.Add(1)
	}
	return nil
}

func (b *Bus) dispatch(ctx context.Context, s *Subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panicked.Add(1)
			err = &PanicError{
				SubscriptionID: s.id,
				Topic:          t.String(),
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if herr := s.handler.Handle(ctx, event); herr != nil {
		b.errored.Add(1)
		return &HandlerError{SubscriptionID: s.id, Topic: t.String(), Err: herr}
	}
	return nil
}

// Close deactivates every subscription and rejects further use.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		s.active.Store(false)
	}
	b.subs = nil
	b.closed = true
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.errored.Load(),
		HandlerPanics: b.panicked.Load(),
		Subscribers:   n,
	}
}

// String implements fmt.Stringer for debugging.
func (s Stats) String() string {
	return fmt.Sprintf("published=%d delivered=%d errors=%d panics=%d subscribers=%d",
		s.Published, s.Delivered, s.HandlerErrors, s.HandlerPanics, s.Subscribers)
}
