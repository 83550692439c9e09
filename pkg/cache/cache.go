// Package cache provides a bounded in memory LRU cache.
//
// Only cache values that cannot change once observed, such as a mint's
// decimals. Mutable on-chain state must always be fetched fresh.
package cache

import (
	"sync"
)

// Cache is a least recently used cache holding at most budget weight worth of
// entries.
type Cache[K comparable, V any] struct {
	mu     sync.Mutex
	head   *node[K, V]
	tail   *node[K, V]
	lookup map[K]*node[K, V]
	weight int
	budget int
}

type node[K comparable, V any] struct {
	next   *node[K, V]
	prev   *node[K, V]
	key    K
	value  V
	weight int
}

// New returns an empty cache with the provided weight budget.
func New[K comparable, V any](budget int) *Cache[K, V] {
	return &Cache[K, V]{
		lookup: make(map[K]*node[K, V]),
		budget: budget,
	}
}

// Weight returns the combined weight of all entries.
func (c *Cache[K, V]) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

// Budget returns the maximum weight the cache holds before evicting.
func (c *Cache[K, V]) Budget() int {
	return c.budget
}

// Insert adds or replaces the entry for key and evicts least recently used
// entries until the cache fits its budget again.
func (c *Cache[K, V]) Insert(key K, value V, weight int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lookup[key]; ok {
		c.weight += weight - existing.weight
		existing.value = value
		existing.weight = weight
		c.moveToFront(existing)
	} else {
		n := &node[K, V]{
			key:    key,
			value:  value,
			weight: weight,
			next:   c.head,
		}
		if c.head != nil {
			c.head.prev = n
		}
		c.head = n
		if c.tail == nil {
			c.tail = n
		}

		c.lookup[key] = n
		c.weight += weight
	}

	for c.weight > c.budget && c.tail != nil {
		c.remove(c.tail)
	}
}

// Retrieve returns the entry for key and marks it as recently used.
func (c *Cache[K, V]) Retrieve(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.lookup[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.moveToFront(n)
	return n.value, true
}

// Delete removes the entry for key, if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.lookup[key]; ok {
		c.remove(n)
	}
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[K]*node[K, V])
	c.weight = 0
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}

	n.prev.next = n.next
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}

	n.prev = nil
	n.next = c.head
	c.head.prev = n
	c.head = n
}

func (c *Cache[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}

	c.weight -= n.weight
	delete(c.lookup, n.key)
}
