package sync

import (
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space (for example, wallet public keys) to a fixed set of locks. Memory use
// is bounded by the stripe count rather than the number of keys seen.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.hashRing.shard(key)]
}

// Lock acquires the write lock for key and returns its release function.
func (l *StripedLock) Lock(key []byte) func() {
	mu := l.Get(key)
	mu.Lock()
	return mu.Unlock
}
