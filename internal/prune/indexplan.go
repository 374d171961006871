package prune

// minIndexLen is the rebuild threshold: an index naming fewer
// than this many blobs is considered undersized and gets folded into a
// fresh, larger index file even if none of its packs changed disposition.
const minIndexLen = 10_000

// planIndexes marks which loaded indexes must be
// rewritten and returns only those, recording IndexFilesTotal/Rebuild in
// stats. An index must be rewritten if it was flagged Modified at load
// time, if any of its packs is being repacked or removed, or if it is
// undersized — except for the degenerate case where exactly one
// undersized index remains and rewriting it would only reproduce itself,
// which is left alone as a no-op.
func planIndexes(indexes []*Index, stats *Stats) []*Index {
	stats.IndexFilesTotal = uint64(len(indexes))

	var toRewrite []*Index
	anyMustModify := false

	for _, idx := range indexes {
		mustModify := idx.Modified
		if !mustModify {
			for _, p := range idx.Packs {
				if p.Action == ActionRepack || p.Action == ActionRemove {
					mustModify = true
					break
				}
			}
		}
		anyMustModify = anyMustModify || mustModify

		if mustModify || blobCount(idx) < minIndexLen {
			toRewrite = append(toRewrite, idx)
		}
	}

	if !anyMustModify && len(toRewrite) == 1 {
		// The only reason this lone index was selected is its size, and
		// rewriting it would just write back the same packs under a new
		// id: a pure no-op churn. Leave it alone.
		toRewrite = nil
	}

	stats.IndexFilesRebuild = uint64(len(toRewrite))
	return toRewrite
}

func blobCount(idx *Index) int {
	n := 0
	for _, p := range idx.Packs {
		n += len(p.Blobs)
	}
	return n
}
