package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring mapping arbitrary keys onto a fixed set of
// stripe indexes.
type ring struct {
	hashRing *treemap.Map

	// first caches the lowest entry in hashRing, since treemap.Map.Min() is
	// O(log n) and it's needed whenever a key hashes past the last entry.
	first int
}

// newRing returns a ring with stripes entries, each placed replicas times.
func newRing(stripes, replicas uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)

	seed := make([]byte, 12)
	for stripe := uint(0); stripe < stripes; stripe++ {
		binary.LittleEndian.PutUint64(seed, uint64(stripe))
		for replica := uint(0); replica < replicas; replica++ {
			binary.LittleEndian.PutUint32(seed[8:], uint32(replica))
			hashRing.Put(hashKey(seed), int(stripe))
		}
	}

	r := &ring{hashRing: hashRing}
	if _, first := hashRing.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// shard returns the stripe index that key consistently maps to.
func (r *ring) shard(key []byte) int {
	_, stripe := r.hashRing.Ceiling(hashKey(key))
	if stripe != nil {
		return stripe.(int)
	}
	return r.first
}

func hashKey(key []byte) int64 {
	h, _ := murmur3.Sum128(key)
	return int64(h)
}
