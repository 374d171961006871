package prune

import (
	"sort"

	"github.com/zxcat/rustic/internal/blob"
)

// selectRepacks runs Phase D: repack candidates are sorted by
// info.less (tree before data, worst waste ratio first) and accepted
// greedily until the repack budget would be exceeded, or (for non-tree
// packs) until the projected unused bytes after pruning already sit
// beneath the unused budget. Accepted candidates flip to ActionRepack;
// the rest settle as ActionKeep, exactly as if the decision engine had
// found them fully used.
func selectRepacks(candidates []repackCandidate, opts Options, stats *Stats) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].info.less(candidates[j].info)
	})

	maxUnused := opts.MaxUnused(stats.Size.Used)
	maxRepack := opts.MaxRepack(stats.TotalSize())

	for _, c := range candidates {
		pi := c.info

		if opts.RepackCacheableOnly && !c.pack.Cacheable {
			keep(c, stats)
			continue
		}

		total := pi.UsedSize + pi.UnusedSize
		if stats.Size.Repack+total >= maxRepack ||
			(pi.Type != blob.TreeBlob && stats.UnusedAfterPrune() < maxUnused) {
			keep(c, stats)
			continue
		}

		c.pack.Action = ActionRepack
		stats.Packs.Repack++
		stats.Blobs.Repack += uint64(pi.UsedBlobs + pi.UnusedBlobs)
		stats.Blobs.Repackrm += uint64(pi.UnusedBlobs)
		stats.Size.Repack += total
		stats.Size.Repackrm += pi.UnusedSize
	}
}

func keep(c repackCandidate, stats *Stats) {
	c.pack.Action = ActionKeep
	stats.Packs.Keep++
}
