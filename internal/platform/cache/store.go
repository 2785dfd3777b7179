package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/live-tracker/internal/platform/resilience"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Store is a TTL cache whose loads are collapsed per key.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	flight  resilience.Group[loaded[T]]
	now     func() time.Time
}

type loaded[T any] struct {
	value T
	err   error
}

func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store[T]) Get(_ context.Context, key string) (T, time.Time, bool) {
	var zero T
	if key == "" {
		return zero, time.Time{}, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, time.Time{}, false
	}
	if s.ttl > 0 && s.now().Sub(e.storedAt) >= s.ttl {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return zero, time.Time{}, false
	}

	return e.value, e.storedAt, true
}

func (s *Store[T]) Set(_ context.Context, key string, value T) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, storedAt: s.now()}
	s.mu.Unlock()
}

func (s *Store[T]) DeletePrefix(_ context.Context, prefix string) {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Clear drops every entry.
func (s *Store[T]) Clear(ctx context.Context) {
	s.DeletePrefix(ctx, "")
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	return s.GetOrLoadIf(ctx, key, loader, nil)
}

// GetOrLoadIf stores a loaded value only when keep accepts it. A nil keep accepts everything.
// Callers sharing a flight still receive the rejected value.
func (s *Store[T]) GetOrLoadIf(ctx context.Context, key string, loader func(context.Context) (T, error), keep func(context.Context, T) bool) (T, error) {
	var zero T
	if loader == nil {
		return zero, errors.New("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, _, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	out, _ := s.flight.Do(key, func() loaded[T] {
		if cached, _, ok := s.Get(ctx, key); ok {
			return loaded[T]{value: cached}
		}

		value, err := loader(ctx)
		if err != nil {
			return loaded[T]{err: err}
		}
		if keep == nil || keep(ctx, value) {
			s.Set(ctx, key, value)
		}
		return loaded[T]{value: value}
	})
	if out.err != nil {
		return zero, out.err
	}

	return out.value, nil
}
