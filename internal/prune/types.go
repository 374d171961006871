// Package prune implements the garbage collector for a deduplicated
// snapshot repository: given the snapshots currently retained, it
// reclaims space from packs containing unreferenced blobs while
// preserving every blob still reachable from a live snapshot.
//
// The reachability scanner lives in internal/blob.Find; the remaining
// four cooperating pieces — index loader, decision engine, index
// planner, executor — are the files in this package (load.go,
// decide.go+budget.go, indexplan.go, execute.go), tied together by Plan
// and PlanPrune (plan.go).
package prune

import (
	"time"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
)

// Action is a pack's disposition, decided once by the decision engine and
// consumed by the index planner and executor.
type Action int

const (
	// ActionKeep leaves the pack file untouched on disk; its descriptor is
	// re-registered verbatim in any index that gets rewritten.
	ActionKeep Action = iota
	// ActionRepack reads the pack's surviving blobs into fresh packs and
	// deletes the source pack afterwards.
	ActionRepack
	// ActionRemove deletes the pack outright: every blob it holds is
	// unused.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionRepack:
		return "repack"
	case ActionRemove:
		return "remove"
	default:
		return "invalid"
	}
}

// Pack is one pack as tracked through a prune run: the index's view of it,
// plus the disposition the decision engine assigns.
type Pack struct {
	ID        ids.ID
	Type      blob.Type
	Time      *time.Time
	Cacheable bool
	Blobs     []blob.Descriptor
	Action    Action
}

// Index is one loaded index file as tracked through a prune run: its id, whether duplicate packs were dropped from
// it at load time, the packs it names, and the opaque packs-to-delete
// carry-over list.
type Index struct {
	ID            ids.ID
	Modified      bool
	Packs         []*Pack
	PacksToDelete ids.IDs
}

// info is the per-pack tally the decision engine builds while classifying
// blobs: used + unused counts equal the number of
// blob descriptors in the pack.
type info struct {
	Type        blob.Type
	UsedBlobs   uint32
	UnusedBlobs uint32
	UsedSize    uint64
	UnusedSize  uint64
}

// less implements the repack-candidate comparator: tree packs sort
// before data packs; within the same primary key, higher
// waste ratio (unused/used) sorts first, compared by cross-multiplication
// to avoid floating point.
func (pi info) less(other info) bool {
	if pi.Type != other.Type {
		// Tree before Data; InvalidBlob (mixed-type packs) keeps
		// whatever relative order falls out of the cross-multiplication,
		// same as any other non-tree pack.
		if pi.Type == blob.TreeBlob {
			return true
		}
		if other.Type == blob.TreeBlob {
			return false
		}
	}
	// other.unused * self.used < self.unused * other.used  =>  self sorts first
	lhs := uint64(other.UnusedSize) * uint64(pi.UsedSize)
	rhs := uint64(pi.UnusedSize) * uint64(other.UsedSize)
	return lhs < rhs
}

type repackCandidate struct {
	pack *Pack
	info info
}

// Stats carries the prune run's statistics: blob and byte counts for used/unused/remove/repack/repackrm/
// unref, plus the pack-level counterparts and index-rebuild count.
type Stats struct {
	Blobs struct {
		Used, Unused, Remove, Repack, Repackrm uint64
	}
	Size struct {
		Used, Unused, Remove, Repack, Repackrm, Unref uint64
	}
	Packs struct {
		Used, Unused, PartlyUsed, Unref, Keep, Repack, Remove uint64
	}
	IndexFilesTotal   uint64
	IndexFilesRebuild uint64
}

// TotalSize returns the total bytes seen (used + unused), the basis for
// the --max-repack percentage grammar.
func (s Stats) TotalSize() uint64 {
	return s.Size.Used + s.Size.Unused
}

// UnusedAfterPrune returns the unused bytes that would remain once the
// planned removals and repacks are applied — the quantity --max-unused
// bounds.
func (s Stats) UnusedAfterPrune() uint64 {
	return s.Size.Unused - s.Size.Remove - s.Size.Repackrm
}
