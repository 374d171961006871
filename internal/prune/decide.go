package prune

import (
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
)

// count runs Phase A: for every blob descriptor of every pack
// of every index, if the descriptor's id is a key of used, its counter is
// incremented with saturating add. After this phase, counter c means "this
// blob is used and appears in (at most, due to clamping) c packs on
// disk".
func count(indexes []*Index, used *blob.UsedSet) {
	for _, idx := range indexes {
		for _, p := range idx.Packs {
			for _, b := range p.Blobs {
				used.IncrementSaturating(b.ID)
			}
		}
	}
}

// validate runs Phase B: any used id whose counter is still 0
// means a snapshot references a blob no index knows about. This is a
// repository-integrity failure and is fatal; the caller must not mutate
// the repository.
func validate(used *blob.UsedSet) error {
	missing := used.MissingIDs()
	if len(missing) == 0 {
		return nil
	}
	return errors.Fatalf("%d used blob(s) not found in any index (repository integrity failure), first: %v", len(missing), missing[0])
}

// classify runs Phase C over every pack, in index-then-pack
// order (the order the outcome depends on for cross-pack duplicates), and returns
// the partly-used packs that become repack candidates. existingPacks is
// mutated: every pack found referenced by an index is removed from it, so
// whatever remains afterward is unreferenced-on-disk.
func classify(indexes []*Index, used *blob.UsedSet, existingPacks map[ids.ID]int64, stats *Stats) ([]repackCandidate, error) {
	var candidates []repackCandidate

	for _, idx := range indexes {
		for _, p := range idx.Packs {
			pi := classifyPack(p, used, stats)

			switch {
			case pi.UsedBlobs == 0:
				p.Action = ActionRemove
				stats.Packs.Unused++
				stats.Blobs.Remove += uint64(pi.UnusedBlobs)
				stats.Size.Remove += pi.UnusedSize
				delete(existingPacks, p.ID)

			case pi.UnusedBlobs == 0:
				if _, ok := existingPacks[p.ID]; !ok {
					return nil, errors.Fatalf("pack %v is used but missing from the repository", p.ID.Str())
				}
				delete(existingPacks, p.ID)

				p.Action = ActionKeep
				stats.Packs.Used++
				stats.Packs.Keep++
				for _, b := range p.Blobs {
					used.Delete(b.ID)
				}

			default:
				if _, ok := existingPacks[p.ID]; !ok {
					return nil, errors.Fatalf("pack %v is used but missing from the repository", p.ID.Str())
				}
				delete(existingPacks, p.ID)

				stats.Packs.PartlyUsed++
				candidates = append(candidates, repackCandidate{pack: p, info: pi})
			}
		}
	}

	for _, size := range existingPacks {
		stats.Size.Unref += uint64(size)
	}
	stats.Packs.Unref = uint64(len(existingPacks))

	return candidates, nil
}

// classifyPack builds one pack's info tally and resolves duplicate used
// blobs within it. It mutates used's counters for every used blob the
// pack contains.
func classifyPack(p *Pack, used *blob.UsedSet, stats *Stats) info {
	hasUsed := false
	for _, b := range p.Blobs {
		if count, ok := used.Count(b.ID); ok && count == 1 {
			hasUsed = true
			break
		}
	}

	pi := info{Type: p.Type}

	for _, b := range p.Blobs {
		size := uint64(b.Length)
		count, ok := used.Count(b.ID)

		switch {
		case !ok:
			// not a used blob at all
			pi.UnusedSize += size
			pi.UnusedBlobs++

		case count == 0:
			// already claimed by an earlier pack in this prune
			pi.UnusedSize += size
			pi.UnusedBlobs++

		case count == 1:
			// last remaining occurrence: claim it here
			pi.UsedSize += size
			pi.UsedBlobs++
			used.SetCount(b.ID, 0)

		case hasUsed:
			// pack is already winning other blobs: prefer to keep this
			// copy too, concentrating duplicates into kept packs
			pi.UsedSize += size
			pi.UsedBlobs++
			used.SetCount(b.ID, 0)

		default:
			// leave the claim for a later pack
			pi.UnusedSize += size
			pi.UnusedBlobs++
			used.SetCount(b.ID, count-1)
		}
	}

	stats.Blobs.Used += uint64(pi.UsedBlobs)
	stats.Blobs.Unused += uint64(pi.UnusedBlobs)
	stats.Size.Used += pi.UsedSize
	stats.Size.Unused += pi.UnusedSize

	return pi
}
