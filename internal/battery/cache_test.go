package battery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStartsEmpty(t *testing.T) {
	c := NewCache()

	current := c.Current()
	require.NotNil(t, current)
	assert.True(t, current.Valid())
	assert.Empty(t, current.Towers)
}

func TestCacheCommitReplacesWholeSnapshot(t *testing.T) {
	c := NewCache()

	first := &Snapshot{Globals: map[string]any{"soc": 50.0}, Towers: []Tower{{}}}
	second := &Snapshot{Globals: map[string]any{"soc": 51.0}, Towers: []Tower{{}, {}}}

	c.Commit(first)
	assert.Same(t, first, c.Current())

	c.Commit(second)
	assert.Same(t, second, c.Current())
}

func TestCacheRejectsInvalid(t *testing.T) {
	c := NewCache()

	good := &Snapshot{Globals: map[string]any{}, Towers: []Tower{{}}}
	c.Commit(good)

	c.Commit(nil)
	assert.Same(t, good, c.Current())

	c.Commit(&Snapshot{Globals: map[string]any{}})
	assert.Same(t, good, c.Current())
}

// Readers must always observe a complete snapshot, even while the poller
// is committing.
func TestCacheConcurrentReaders(t *testing.T) {
	c := NewCache()

	snapshots := make([]*Snapshot, 10)
	for i := range snapshots {
		snapshots[i] = &Snapshot{
			Globals: map[string]any{"soc": float64(i)},
			Towers:  []Tower{{}},
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, s := range snapshots {
			c.Commit(s)
		}
	}()

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := c.Current()
				require.NotNil(t, s)
				require.True(t, s.Valid())
			}
		}()
	}

	wg.Wait()
	assert.Same(t, snapshots[len(snapshots)-1], c.Current())
}
