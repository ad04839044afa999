// Package query caches server task state and keeps it fresh: mutations publish an
// invalidation, subscribers refetch. Cached lists are never patched locally.
package query

import "sync"

// TasksKey is the cache key of every task list
const TasksKey = "tasks"

// Bus delivers invalidation signals per cache key
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe returns a channel signalled on every Publish(key). Signals coalesce:
// a subscriber that has not consumed the previous one sees a single pending signal.
func (b *Bus) Subscribe(key string) (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan struct{}, 1)
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]chan struct{})
	}
	b.subs[key][id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[key], id)
		})
	}
	return ch, unsubscribe
}

// Publish marks key stale for every subscriber. It never blocks.
func (b *Bus) Publish(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
