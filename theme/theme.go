// Package theme holds the site-wide colour scheme as a single shared setting.
//
// Readers do not poll a global: they subscribe and receive every change,
// and unsubscribe when they go away.
package theme

import (
	"runtime/debug"
	"sort"
	"sync"

	"github.com/labstack/gommon/log"
)

// Logger receives subscriber panics. gommon's *log.Logger (and therefore
// echo.Logger) satisfies it.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Setting is a process-wide value with change notification.
type Setting[T comparable] struct {
	// delivery is held from a change until every subscriber has seen it, so
	// notifications arrive in the order values were set.
	delivery sync.Mutex

	mu    sync.RWMutex
	value T
	subs  map[uint64]func(T)
	next  uint64
	log   Logger
}

// NewSetting creates a Setting holding initial.
func NewSetting[T comparable](initial T) *Setting[T] {
	return &Setting[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
		log:   log.New("theme"),
	}
}

// SetLogger replaces the logger that reports panicking subscribers.
func (s *Setting[T]) SetLogger(l Logger) {
	s.mu.Lock()
	s.log = l
	s.mu.Unlock()
}

// Get returns the current value.
func (s *Setting[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v and notifies subscribers if it differs from the current value.
func (s *Setting[T]) Set(v T) {
	s.delivery.Lock()
	defer s.delivery.Unlock()

	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	subs, logger := s.snapshot(), s.log
	s.mu.Unlock()

	notify(logger, subs, v)
}

// Update applies fn to the current value atomically and notifies subscribers
// with the result if it changed.
func (s *Setting[T]) Update(fn func(T) T) T {
	s.delivery.Lock()
	defer s.delivery.Unlock()

	s.mu.Lock()
	old := s.value
	v := fn(old)
	if v == old {
		s.mu.Unlock()
		return v
	}
	s.value = v
	subs, logger := s.snapshot(), s.log
	s.mu.Unlock()

	notify(logger, subs, v)
	return v
}

// Subscribe registers fn and calls it once with the current value, then
// with every later change in order. fn may call Get and unsubscribe, but
// must not call Set or Update. The returned func removes the subscription;
// calling it more than once is safe.
func (s *Setting[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.delivery.Lock()
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	v, logger := s.value, s.log
	s.mu.Unlock()

	notify(logger, []func(T){fn}, v)
	s.delivery.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Setting[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// snapshot returns subscribers in registration order. Caller holds the lock.
func (s *Setting[T]) snapshot() []func(T) {
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]func(T), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}

func notify[T any](logger Logger, subs []func(T), v T) {
	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("subscriber panicked: %v\n%s", r, debug.Stack())
				}
			}()
			fn(v)
		}()
	}
}
