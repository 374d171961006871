package blob

import (
	"fmt"

	"github.com/zxcat/rustic/internal/ids"
)

// Handle identifies a blob by its content id and declared type: the same
// id can in principle be claimed as both a tree and a data blob without
// collision, so type is part of identity.
type Handle struct {
	Type Type
	ID   ids.ID
}

func (h Handle) String() string {
	return fmt.Sprintf("<%s/%s>", h.Type, h.ID.Str())
}

// Descriptor is a blob's location within a pack: its handle plus the byte
// range of the encrypted record.
type Descriptor struct {
	Handle
	Offset uint32
	Length uint32
}

// Set is an unordered set of blob handles.
type Set map[Handle]struct{}

// NewSet returns a new Set populated with handles.
func NewSet(handles ...Handle) Set {
	s := make(Set, len(handles))
	for _, h := range handles {
		s[h] = struct{}{}
	}
	return s
}

func (s Set) Has(h Handle) bool { _, ok := s[h]; return ok }
func (s Set) Insert(h Handle)   { s[h] = struct{}{} }
func (s Set) Delete(h Handle)   { delete(s, h) }
func (s Set) Len() int          { return len(s) }
