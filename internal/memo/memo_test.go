package memo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

func key(version uint64, tr tier.Tier) Key {
	return Key{
		EventsVersion: version,
		Tier:          tr,
		Viewport:      core.Size{Width: 400, Height: 800},
		Orientation:   core.Vertical,
		Mode:          core.Minimal,
	}
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache(0)

	scene := core.Scene{Revision: 1, Tier: "month"}
	c.Put(key(1, tier.Month), scene)

	got, ok := c.Get(key(1, tier.Month))
	require.True(t, ok)
	assert.Equal(t, scene, got)
}

func TestCache_MissOnDifferentViewState(t *testing.T) {
	c := NewCache(0)
	c.Put(key(1, tier.Month), core.Scene{Revision: 1})

	_, ok := c.Get(key(1, tier.Week))
	assert.False(t, ok, "different tier is a different scene")

	k := key(1, tier.Month)
	k.Mode = core.Maximal
	_, ok = c.Get(k)
	assert.False(t, ok, "different display mode is a different scene")

	_, ok = c.Get(key(2, tier.Month))
	assert.False(t, ok, "newer events version is a different scene")
}

func TestCache_InvalidateBefore(t *testing.T) {
	c := NewCache(0)
	c.Put(key(1, tier.Month), core.Scene{Revision: 1})
	c.Put(key(2, tier.Month), core.Scene{Revision: 2})

	c.InvalidateBefore(2)

	_, ok := c.Get(key(1, tier.Month))
	assert.False(t, ok)
	_, ok = c.Get(key(2, tier.Month))
	assert.True(t, ok)
}

func TestCache_EvictsOldestVersionWhenFull(t *testing.T) {
	c := NewCache(2)
	c.Put(key(1, tier.Month), core.Scene{Revision: 1})
	c.Put(key(2, tier.Month), core.Scene{Revision: 2})
	c.Put(key(3, tier.Month), core.Scene{Revision: 3})

	_, ok := c.Get(key(1, tier.Month))
	assert.False(t, ok, "oldest version evicted")
	_, ok = c.Get(key(3, tier.Month))
	assert.True(t, ok)
	assert.LessOrEqual(t, c.Len(), 2)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(0)
	c.Put(key(1, tier.Month), core.Scene{})

	c.Get(key(1, tier.Month))
	c.Get(key(1, tier.Week))

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Reset()
	hits, misses = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(128)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(v uint64) {
			defer wg.Done()
			c.Put(key(v, tier.Month), core.Scene{Revision: v})
		}(uint64(i))
		go func(v uint64) {
			defer wg.Done()
			c.Get(key(v, tier.Month))
		}(uint64(i))
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 128)
}
