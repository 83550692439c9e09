package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertRetrieve(t *testing.T) {
	c := New[string, uint8](10)

	_, ok := c.Retrieve("mint")
	assert.False(t, ok)

	c.Insert("mint", 6, 1)
	actual, ok := c.Retrieve("mint")
	require.True(t, ok)
	assert.EqualValues(t, 6, actual)
	assert.Equal(t, 1, c.Weight())
	assert.Equal(t, 10, c.Budget())

	// Replacing keeps a single entry
	c.Insert("mint", 9, 2)
	actual, ok = c.Retrieve("mint")
	require.True(t, ok)
	assert.EqualValues(t, 9, actual)
	assert.Equal(t, 2, c.Weight())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, string](3)
	c.Insert("a", "A", 1)
	c.Insert("b", "B", 1)
	c.Insert("c", "C", 1)

	// Touch a so that b is the oldest
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	c.Insert("d", "D", 1)
	assert.Equal(t, 3, c.Weight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}

	// A heavy entry evicts several
	c.Insert("e", "E", 3)
	assert.Equal(t, 3, c.Weight())
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.False(t, ok, key)
	}
}

func TestCache_OversizedEntry(t *testing.T) {
	c := New[string, string](2)
	c.Insert("a", "A", 1)
	c.Insert("huge", "H", 5)

	assert.Zero(t, c.Weight())
	_, ok := c.Retrieve("huge")
	assert.False(t, ok)
	_, ok = c.Retrieve("a")
	assert.False(t, ok)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New[int, int](10)
	for i := 0; i < 5; i++ {
		c.Insert(i, i*i, 1)
	}

	c.Delete(2)
	c.Delete(42)
	_, ok := c.Retrieve(2)
	assert.False(t, ok)
	assert.Equal(t, 4, c.Weight())

	// Head and tail removal
	c.Delete(4)
	c.Delete(0)
	assert.Equal(t, 2, c.Weight())
	v, ok := c.Retrieve(3)
	require.True(t, ok)
	assert.Equal(t, 9, v)

	c.Clear()
	assert.Zero(t, c.Weight())
	_, ok = c.Retrieve(3)
	assert.False(t, ok)

	c.Insert(7, 49, 1)
	v, ok = c.Retrieve(7)
	require.True(t, ok)
	assert.Equal(t, 49, v)
}

func TestCache_Concurrent(t *testing.T) {
	c := New[string, int](100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", worker, j%20)
				c.Insert(key, j, 1)
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.True(t, c.Weight() <= 100)
}
