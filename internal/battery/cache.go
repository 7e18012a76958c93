package battery

import "sync/atomic"

// Cache holds the last committed snapshot. The poller is its only writer;
// metric resolvers read it concurrently, so the snapshot is swapped as a
// whole pointer and never mutated in place. A reader always observes either
// the previous complete snapshot or the newly committed one.
type Cache struct {
	current atomic.Pointer[Snapshot]
}

func NewCache() *Cache {
	c := &Cache{}
	c.current.Store(Empty())

	return c
}

// Current returns the last committed snapshot. It never returns nil: before
// the first commit it returns the empty snapshot.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

// Commit replaces the cached snapshot. Invalid snapshots are dropped so a
// bad poll can never displace the last known good data.
func (c *Cache) Commit(s *Snapshot) {
	if !s.Valid() {
		return
	}
	c.current.Store(s)
}
