package prune

import (
	"context"
	"fmt"
	"strings"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/repository"
)

// Plan is the fully decided outcome of a prune run: every pack's action,
// every index scheduled for rewrite, and the resulting statistics. It is
// produced by PlanPrune and consumed by Execute; nothing about it depends
// on whether the run is a dry run.
type Plan struct {
	repo *repository.Repository
	used *blob.UsedSet

	indexes      []*Index // all loaded indexes, decided
	rewrite      []*Index // subset that must be rewritten
	unrefPackIDs ids.IDs  // on-disk packs named by no index
	stats        Stats
}

// Stats returns the run's statistics.
func (p Plan) Stats() Stats { return p.stats }

// PlanPrune runs the first four components of the garbage collector —
// reachability scanner, index loader, decision engine, index planner — and
// assembles their outcome into a Plan. progress may be nil.
func PlanPrune(ctx context.Context, repo *repository.Repository, opts Options, progress blob.ProgressCounter) (Plan, error) {
	entries, err := repo.LoadIndexes(ctx)
	if err != nil {
		return Plan{}, err
	}

	snapshots, err := repo.LoadSnapshots(ctx)
	if err != nil {
		return Plan{}, err
	}

	existingPacks, err := repo.ListPacks(ctx)
	if err != nil {
		return Plan{}, err
	}

	roots := make(ids.IDs, len(snapshots))
	for i, s := range snapshots {
		roots[i] = s.Tree
	}

	used := blob.NewUsedSet()
	if err := blob.Find(ctx, repo, roots, used, progress); err != nil {
		return Plan{}, errors.Wrap(err, "determining used blobs")
	}

	indexes := loadIndexes(entries)

	count(indexes, used)
	if err := validate(used); err != nil {
		return Plan{}, err
	}

	var stats Stats
	candidates, err := classify(indexes, used, existingPacks, &stats)
	if err != nil {
		return Plan{}, err
	}

	selectRepacks(candidates, opts, &stats)

	rewrite := planIndexes(indexes, &stats)

	unref := make(ids.IDs, 0, len(existingPacks))
	for id := range existingPacks {
		unref = append(unref, id)
	}

	return Plan{
		repo:         repo,
		used:         used,
		indexes:      indexes,
		rewrite:      rewrite,
		unrefPackIDs: unref,
		stats:        stats,
	}, nil
}

// FormatStats renders the statistics the way restic's own prune command
// prints them, independent of dry-run: the caller always gets to see what
// would happen, whether or not Execute runs next. Bytes held by packs that
// are on disk but named by no index ("unindexed") are reported on their
// own line, since their blob count is unknown, and are folded into the
// total-prune byte sum alongside repackrm and remove.
func FormatStats(s Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"used:    %10d blobs, %s\n"+
			"unused:  %10d blobs, %s\n"+
			"to repack: %8d packs, %10d blobs, %s\n"+
			"this removes: %5d blobs, %s\n"+
			"to delete: %8d packs, %10d blobs, %s\n",
		s.Blobs.Used, humanSize(s.Size.Used),
		s.Blobs.Unused, humanSize(s.Size.Unused),
		s.Packs.Repack, s.Blobs.Repack, humanSize(s.Size.Repack),
		s.Blobs.Repackrm, humanSize(s.Size.Repackrm),
		s.Packs.Unused, s.Blobs.Remove, humanSize(s.Size.Remove),
	)

	if s.Packs.Unref > 0 {
		fmt.Fprintf(&b, "unindexed: %8d packs, %s\n", s.Packs.Unref, humanSize(s.Size.Unref))
	}

	fmt.Fprintf(&b,
		"total prune: %6s\n"+
			"remaining: %8s, %10d blobs\n"+
			"unused size after prune: %s (%.2f%% of remaining size)\n"+
			"index files: %d of %d will be rebuilt\n",
		humanSize(s.Size.Remove+s.Size.Repackrm+s.Size.Unref),
		humanSize(s.TotalSize()-s.Size.Remove-s.Size.Repackrm), s.Blobs.Used,
		humanSize(s.UnusedAfterPrune()), unusedPercent(s),
		s.IndexFilesRebuild, s.IndexFilesTotal,
	)

	return b.String()
}

func unusedPercent(s Stats) float64 {
	remaining := s.TotalSize() - s.Size.Remove - s.Size.Repackrm
	if remaining == 0 {
		return 0
	}
	return 100 * float64(s.UnusedAfterPrune()) / float64(remaining)
}

func humanSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
