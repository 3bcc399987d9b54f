package mystore

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

type InMemoryStore[T any] struct {
	sync.Mutex
	items map[string]entry[T]
	ttl   time.Duration
}

// NewInMemoryStore is used for development and tests. Expired entries
// are evicted lazily on read.
func NewInMemoryStore[T any](ttl time.Duration) *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
	}
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	s.Lock()
	defer s.Unlock()

	s.items[uid] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	s.Lock()
	defer s.Unlock()

	item, exists := s.items[uid]
	if !exists {
		var empty T
		return empty, false, nil
	}

	if time.Now().After(item.expiresAt) {
		delete(s.items, uid)
		var empty T
		return empty, false, nil
	}

	return item.value, true, nil
}

func (s *InMemoryStore[T]) Delete(c context.Context, uid string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.items, uid)

	return nil
}
