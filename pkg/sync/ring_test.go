package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("owner%d", i))
		stripe := r.shard(key)
		assert.True(t, stripe >= 0 && stripe < 64)

		for j := 0; j < 16; j++ {
			assert.Equal(t, stripe, r.shard(key))
		}
	}

	// A second ring over the same stripes agrees
	other := newRing(64, 200)
	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("owner%d", i))
		assert.Equal(t, r.shard(key), other.shard(key))
	}
}

func TestRing_Distribution(t *testing.T) {
	for _, tc := range []struct {
		replicas uint
		margin   float64
	}{
		// A stripe's share of the ring deviates by about 1/sqrt(replicas).
		// Margins are over 6 standard deviations.
		{replicas: 4096, margin: 0.1},
		{replicas: hashEntriesPerLock, margin: 0.5},
	} {
		stripes := 5
		iterations := 200000
		expected := iterations / stripes

		r := newRing(uint(stripes), tc.replicas)

		hits := make(map[int]int)
		for i := 0; i < iterations; i++ {
			hits[r.shard([]byte(fmt.Sprintf("key%d", i)))]++
		}

		assert.Len(t, hits, stripes)
		for stripe, count := range hits {
			deviation := math.Abs(float64(count-expected)) / float64(expected)
			assert.True(t, deviation <= tc.margin, "replicas=%d stripe=%d hits=%d", tc.replicas, stripe, count)
		}
	}
}

func TestRing_SingleStripe(t *testing.T) {
	r := newRing(1, 10)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.shard([]byte(fmt.Sprintf("key%d", i))))
	}
}
