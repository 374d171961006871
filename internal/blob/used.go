package blob

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/zxcat/rustic/internal/ids"
)

// maxCount is the saturation ceiling for a used-blob's occurrence counter.
const maxCount = 255

// UsedSet is the used-ids table: a mapping from blob id to a
// small, saturating occurrence counter. Every blob reachable from a live
// snapshot is a key, seeded at 0 by the reachability scanner.
//
// The table is backed by an xsync.MapOf so that Find's worker goroutines —
// one per in-flight tree load, each inserting the file and subtree ids its
// own tree yields the moment that tree decodes, concurrently with every
// other worker at the same frontier level — can mutate it without a global
// lock. Phase C (classify and resolve duplicates) is single-threaded and
// is the sole owner of the table from that point on, so its mutations use
// plain loads/stores.
type UsedSet struct {
	m *xsync.MapOf[ids.ID, *atomic.Uint32]
}

// NewUsedSet returns an empty used-ids table.
func NewUsedSet() *UsedSet {
	return &UsedSet{m: xsync.NewMapOf[ids.ID, *atomic.Uint32]()}
}

// Insert seeds id into the table with counter 0 if it is not already
// present. Safe for concurrent use.
func (s *UsedSet) Insert(id ids.ID) {
	s.m.LoadOrStore(id, new(atomic.Uint32))
}

// Has reports whether id is a key of the table.
func (s *UsedSet) Has(id ids.ID) bool {
	_, ok := s.m.Load(id)
	return ok
}

// Len returns the number of keys in the table.
func (s *UsedSet) Len() int {
	return s.m.Size()
}

// IncrementSaturating adds one to id's counter, clamping at maxCount, and
// reports whether id was present. Safe for concurrent use across multiple
// ids; per-id updates are atomic. Used by the decision engine's Phase A.
func (s *UsedSet) IncrementSaturating(id ids.ID) bool {
	c, ok := s.m.Load(id)
	if !ok {
		return false
	}
	for {
		old := c.Load()
		if old >= maxCount {
			return true
		}
		if c.CompareAndSwap(old, old+1) {
			return true
		}
	}
}

// Count returns id's current counter and whether id is a key at all.
func (s *UsedSet) Count(id ids.ID) (uint8, bool) {
	c, ok := s.m.Load(id)
	if !ok {
		return 0, false
	}
	return uint8(c.Load()), true
}

// SetCount overwrites id's counter. id must already be a key. Used by
// Phase C's single-threaded duplicate resolution.
func (s *UsedSet) SetCount(id ids.ID, count uint8) {
	c, ok := s.m.Load(id)
	if !ok {
		return
	}
	c.Store(uint32(count))
}

// Delete removes id from the table entirely: it has been fully accounted
// for by a pack that is kept whole.
func (s *UsedSet) Delete(id ids.ID) {
	s.m.Delete(id)
}

// Consume removes id from the table and reports whether it was still
// present. The executor calls this once per blob of a repacked pack, so
// only the first repacked pack, in execution order, that still finds a
// blob id in the table copies it forward; every later copy of that id in
// another repacked pack is dropped rather than rewritten twice. Ids of
// packs kept whole were already deleted by classify, so Consume returns
// false for them.
func (s *UsedSet) Consume(id ids.ID) bool {
	_, existed := s.m.LoadAndDelete(id)
	return existed
}

// Range calls f for every (id, counter) pair in the table. f must not
// mutate the table. Iteration order is unspecified.
func (s *UsedSet) Range(f func(id ids.ID, count uint8) bool) {
	s.m.Range(func(id ids.ID, c *atomic.Uint32) bool {
		return f(id, uint8(c.Load()))
	})
}

// MissingIDs returns every key whose counter is still 0 — used by Phase
// B's missing-blob validation.
func (s *UsedSet) MissingIDs() ids.IDs {
	var missing ids.IDs
	s.Range(func(id ids.ID, count uint8) bool {
		if count == 0 {
			missing = append(missing, id)
		}
		return true
	})
	return missing
}
