package calculator

import (
	"container/list"
	"sync"
)

// BoundedLRUCache is a thread-safe bounded LRU cache with generic key-value types
type BoundedLRUCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*list.Element
	lru     *list.List
	maxSize int
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func NewBoundedLRUCache[K comparable, V any](maxSize int) *BoundedLRUCache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &BoundedLRUCache[K, V]{
		entries: make(map[K]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached value and marks it most recently used.
func (c *BoundedLRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*lruEntry[K, V]).value, true
}

// Set adds or replaces a value, evicting the least recently used entry when
// full. It reports whether an entry was evicted.
func (c *BoundedLRUCache[K, V]) Set(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		return false
	}

	evicted := false
	if len(c.entries) >= c.maxSize {
		if back := c.lru.Back(); back != nil {
			c.lru.Remove(back)
			delete(c.entries, back.Value.(*lruEntry[K, V]).key)
			evicted = true
		}
	}
	c.entries[key] = c.lru.PushFront(&lruEntry[K, V]{key: key, value: value})
	return evicted
}

func (c *BoundedLRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *BoundedLRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element, c.maxSize)
	c.lru.Init()
}
