// Package stream provides latest-value broadcast cells and the small set of
// channel combinators the app builds its reactive pipelines from.
//
// Every channel handed out by this package is conflated: it buffers at most
// one value and a newer value replaces an unread older one. Consumers always
// observe the most recent value, never a backlog.
package stream

import (
	"context"
	"sync"
)

// Value holds the latest value of T and broadcasts every change to subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	v      T
	set    bool
	subs   map[int]chan T
	nextID int
}

// NewValue returns a Value seeded with v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v, set: true, subs: make(map[int]chan T)}
}

// NewEmpty returns a Value with no initial value. Subscribers receive nothing
// until the first Set.
func NewEmpty[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]chan T)}
}

// Get returns the current value and whether one has been set.
func (s *Value[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v, s.set
}

// Set replaces the value and notifies subscribers.
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
	s.set = true
	s.broadcast()
}

// Update atomically replaces the value with fn(current) and returns the result.
// fn runs under the Value's lock and must not call back into it.
func (s *Value[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = fn(s.v)
	s.set = true
	s.broadcast()
	return s.v
}

// Subscribe returns a channel that receives the current value (if any) and
// every later change. The channel is closed when ctx is done.
func (s *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if s.set {
		ch <- s.v
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// broadcast must be called with s.mu held.
func (s *Value[T]) broadcast() {
	for _, ch := range s.subs {
		Offer(ch, s.v)
	}
}

// Offer replaces any unread value in ch with v. ch must have capacity 1 and a
// single sender, or senders serialized by the caller.
func Offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Result carries a value or the error that prevented producing it.
type Result[T any] struct {
	Value T
	Err   error
}

// Query runs fetch once per signal on trigger and delivers each result.
// The returned channel closes when trigger closes or ctx is done.
func Query[T any](ctx context.Context, trigger <-chan struct{}, fetch func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-trigger:
				if !ok {
					return
				}
				v, err := fetch()
				Offer(out, Result[T]{Value: v, Err: err})
			}
		}
	}()
	return out
}

// Map applies fn to every value received on in.
func Map[T, U any](ctx context.Context, in <-chan T, fn func(T) U) <-chan U {
	out := make(chan U, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				Offer(out, fn(v))
			}
		}
	}()
	return out
}

// Values unwraps results, passing errors to onErr and dropping them.
func Values[T any](ctx context.Context, in <-chan Result[T], onErr func(error)) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				if r.Err != nil {
					if onErr != nil {
						onErr(r.Err)
					}
					continue
				}
				Offer(out, r.Value)
			}
		}
	}()
	return out
}

// Merge fans several signal channels into one conflated signal channel.
func Merge(ctx context.Context, ins ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{}, 1)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, in := range ins {
		wg.Add(1)
		go func(in <-chan struct{}) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-in:
					if !ok {
						return
					}
					mu.Lock()
					Offer(out, struct{}{})
					mu.Unlock()
				}
			}
		}(in)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
