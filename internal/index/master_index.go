package index

import (
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
)

// Location is where a blob's encrypted bytes live: a pack id plus byte
// range.
type Location struct {
	PackID ids.ID
	Offset uint32
	Length uint32
}

// MasterIndex is the merged, in-memory catalog built by loading every
// index file: a lookup from blob handle to its pack location,
// used by readers (e.g. the reachability scanner's tree loader) to resolve
// a blob id to bytes.
type MasterIndex struct {
	lookup map[blob.Handle]Location
}

// NewMasterIndex returns an empty catalog.
func NewMasterIndex() *MasterIndex {
	return &MasterIndex{lookup: make(map[blob.Handle]Location)}
}

// Merge folds every blob of every pack in f into the catalog.
func (m *MasterIndex) Merge(f File) {
	for _, p := range f.Packs {
		for _, b := range p.Blobs {
			m.lookup[b.Handle] = Location{PackID: p.ID, Offset: b.Offset, Length: b.Length}
		}
	}
}

// Lookup resolves h to its pack location.
func (m *MasterIndex) Lookup(h blob.Handle) (Location, bool) {
	loc, ok := m.lookup[h]
	return loc, ok
}

// Each calls visit once per (packID, blob descriptor) pair known to the
// catalog. Iteration order is unspecified.
func (m *MasterIndex) Each(visit func(packID ids.ID, b blob.Descriptor)) {
	for h, loc := range m.lookup {
		visit(loc.PackID, blob.Descriptor{Handle: h, Offset: loc.Offset, Length: loc.Length})
	}
}

// Len returns the number of distinct blobs known to the catalog.
func (m *MasterIndex) Len() int {
	return len(m.lookup)
}
