package prune

import (
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/repository"
)

// loadIndexes turns the raw index entries the repository loaded into the
// Index/Pack bookkeeping the decision engine operates on: duplicate pack
// descriptors — the same pack named by more than one index file, or
// twice within one — are collapsed, kept on first sighting, dropped on
// every later sighting, and the containing index is flagged Modified so
// a rewrite drops the duplicate for good.
func loadIndexes(entries []repository.IndexEntry) []*Index {
	seen := ids.NewSet()

	out := make([]*Index, 0, len(entries))
	for _, e := range entries {
		idx := &Index{ID: e.ID, PacksToDelete: e.File.PacksToDelete}

		for _, p := range e.File.Packs {
			if seen.Has(p.ID) {
				idx.Modified = true
				continue
			}
			seen.Insert(p.ID)

			idx.Packs = append(idx.Packs, &Pack{
				ID:        p.ID,
				Type:      p.Type,
				Time:      p.Time,
				Cacheable: p.Cacheable,
				Blobs:     p.Blobs,
				Action:    ActionKeep,
			})
		}

		out = append(out, idx)
	}

	return out
}
