package prune_test

import (
	"context"
	"testing"
	"time"

	"github.com/zxcat/rustic/internal/backend/mem"
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/limits"
	"github.com/zxcat/rustic/internal/pack"
	"github.com/zxcat/rustic/internal/prune"
	"github.com/zxcat/rustic/internal/repository"
	"github.com/zxcat/rustic/internal/repository/repotest"
	"github.com/zxcat/rustic/internal/rtest"
)

func unlimitedOptions(t *testing.T) prune.Options {
	t.Helper()
	unlimited, err := limits.ParseRepackLimit("unlimited")
	rtest.OK(t, err)
	return prune.Options{MaxRepack: unlimited, MaxUnused: unlimited}
}

func newRepo(ctx context.Context, b *mem.Backend) *repository.Repository {
	return repository.New(b)
}

func saveSnapshotOverTree(ctx context.Context, b *mem.Backend, treeID ids.ID) {
	repotest.SaveSnapshot(ctx, b, blob.Snapshot{Time: time.Now(), Tree: treeID, Hostname: "test"})
}

// addTree wraps a single file content blob in a minimal tree and returns
// the tree blob's id, for scenarios that need a snapshot root but don't
// care about tree shape otherwise.
func addTree(bu *repotest.Builder, fileBlobs ids.IDs) ids.ID {
	t := blob.Tree{Nodes: []blob.Node{{Name: "f", Type: blob.NodeFile, Content: fileBlobs}}}
	data, err := blob.EncodeTree(t)
	if err != nil {
		panic(err)
	}
	return bu.AddBlob(blob.TreeBlob, data)
}

// TestFullyUnusedPack covers spec scenario 1: a pack entirely unreferenced
// is removed outright; a pack entirely referenced is kept untouched.
func TestFullyUnusedPack(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	x := bu.AddBlob(blob.DataBlob, []byte("x content"))
	y := bu.AddBlob(blob.DataBlob, []byte("y content"))
	packA := bu.FinishPack()

	z := bu.AddBlob(blob.DataBlob, []byte("z content, unreferenced"))
	packB := bu.FinishPack()

	treeID := addTree(bu, ids.IDs{x, y})
	packTree := bu.FinishPack()
	_ = z

	repotest.SaveIndex(ctx, b, []pack.Descriptor{packA, packB, packTree}, nil)
	saveSnapshotOverTree(ctx, b, treeID)

	repo := newRepo(ctx, b)
	plan, err := prune.PlanPrune(ctx, repo, unlimitedOptions(t), nil)
	rtest.OK(t, err)

	stats := plan.Stats()
	rtest.Equals(t, uint64(1), stats.Packs.Unused)
	rtest.Equals(t, uint64(0), stats.Packs.Repack)
}

// TestPartlyUsedPackWithinBudget covers spec scenario 2: a partly-used
// pack whose unused bytes sit within the --max-unused tolerance is kept
// rather than repacked.
func TestPartlyUsedPackWithinBudget(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	used := bu.AddBlob(blob.DataBlob, make([]byte, 190<<20)) // 190 MiB used
	bu.AddBlob(blob.DataBlob, make([]byte, 8<<20))           // 8 MiB unused, under the ~10 MiB tolerance
	packA := bu.FinishPack()

	treeID := addTree(bu, ids.IDs{used})
	packTree := bu.FinishPack()

	repotest.SaveIndex(ctx, b, []pack.Descriptor{packA, packTree}, nil)
	saveSnapshotOverTree(ctx, b, treeID)

	repo := newRepo(ctx, b)
	maxUnused, err := limits.ParseUnusedLimit("5%")
	rtest.OK(t, err)
	opts := prune.Options{MaxRepack: unlimitedOptions(t).MaxRepack, MaxUnused: maxUnused}

	plan, err := prune.PlanPrune(ctx, repo, opts, nil)
	rtest.OK(t, err)

	rtest.Equals(t, uint64(0), plan.Stats().Packs.Repack)
}

// TestPartlyUsedPackOverBudget covers spec scenario 3: the same shape but
// with enough unused bytes to exceed the tolerance, triggering a repack.
func TestPartlyUsedPackOverBudget(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	used := bu.AddBlob(blob.DataBlob, make([]byte, 70<<20)) // 70 MiB used
	bu.AddBlob(blob.DataBlob, make([]byte, 30<<20))         // 30 MiB unused
	packA := bu.FinishPack()

	treeID := addTree(bu, ids.IDs{used})
	packTree := bu.FinishPack()

	repotest.SaveIndex(ctx, b, []pack.Descriptor{packA, packTree}, nil)
	saveSnapshotOverTree(ctx, b, treeID)

	repo := newRepo(ctx, b)
	maxUnused, err := limits.ParseUnusedLimit("5%")
	rtest.OK(t, err)
	opts := prune.Options{MaxRepack: unlimitedOptions(t).MaxRepack, MaxUnused: maxUnused}

	plan, err := prune.PlanPrune(ctx, repo, opts, nil)
	rtest.OK(t, err)

	rtest.Equals(t, uint64(1), plan.Stats().Packs.Repack)
}

// TestDuplicateAcrossPacks covers spec scenario 4: blob b is duplicated
// across packs A and B; A also holds another used blob so it wins the
// claim for b (has_used), leaving B with zero used blobs and therefore
// scheduled for removal even though it nominally "contains" a used blob.
func TestDuplicateAcrossPacks(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	dupContent := make([]byte, 1<<20)
	dupContent[0] = 0xAB // distinguish from the zero-filled filler below

	other := bu.AddBlob(blob.DataBlob, make([]byte, 10<<20))
	dup := bu.AddBlob(blob.DataBlob, dupContent)
	packA := bu.FinishPack() // 10 MiB other + 1 MiB dup, both claimed used

	dupAgain := bu.AddBlob(blob.DataBlob, dupContent) // same id as dup
	bu.AddBlob(blob.DataBlob, make([]byte, 5<<20))     // unused filler
	packB := bu.FinishPack()
	rtest.Equals(t, dup, dupAgain)

	treeID := addTree(bu, ids.IDs{other, dup})
	packTree := bu.FinishPack()

	repotest.SaveIndex(ctx, b, []pack.Descriptor{packA, packB, packTree}, nil)
	saveSnapshotOverTree(ctx, b, treeID)

	repo := newRepo(ctx, b)
	plan, err := prune.PlanPrune(ctx, repo, unlimitedOptions(t), nil)
	rtest.OK(t, err)

	rtest.Equals(t, uint64(1), plan.Stats().Packs.Unused)
}

// TestTreePackPriority covers spec scenario 5: tree packs sort first and
// are admitted to the repack budget regardless of the unused tolerance;
// remaining budget then admits a qualifying data pack too.
func TestTreePackPriority(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	dataUsed := bu.AddBlob(blob.DataBlob, make([]byte, 8<<20))
	bu.AddBlob(blob.DataBlob, make([]byte, 32<<20)) // unused -> 0.8 ratio over 40 MiB
	dataPack := bu.FinishPack()

	subtree := blob.Tree{Nodes: []blob.Node{}}
	subtreeData, err := blob.EncodeTree(subtree)
	rtest.OK(t, err)
	treeUsed := bu.AddBlob(blob.TreeBlob, subtreeData)
	bu.AddBlob(blob.TreeBlob, make([]byte, 7<<20)) // 7 MiB unused padding beside the tiny used tree; 7 + 40 MiB fits the 50 MiB budget
	treeCandidate := bu.FinishPack()

	root := blob.Tree{Nodes: []blob.Node{
		{Name: "f", Type: blob.NodeFile, Content: ids.IDs{dataUsed}},
		{Name: "d", Type: blob.NodeDir, Subtree: &treeUsed},
	}}
	rootData, err := blob.EncodeTree(root)
	rtest.OK(t, err)
	rootTree := bu.AddBlob(blob.TreeBlob, rootData)
	rootPack := bu.FinishPack()

	repotest.SaveIndex(ctx, b, []pack.Descriptor{dataPack, treeCandidate, rootPack}, nil)
	saveSnapshotOverTree(ctx, b, rootTree)

	repo := newRepo(ctx, b)
	maxRepack, err := limits.ParseRepackLimit("50MiB")
	rtest.OK(t, err)
	// An effectively zero unused tolerance means no non-tree pack's unused
	// bytes can be tolerated, so the data pack also qualifies for repack
	// once the tree candidate (always admitted) has been processed.
	maxUnused, err := limits.ParseUnusedLimit("1b")
	rtest.OK(t, err)
	opts := prune.Options{MaxRepack: maxRepack, MaxUnused: maxUnused}

	plan, err := prune.PlanPrune(ctx, repo, opts, nil)
	rtest.OK(t, err)

	rtest.Equals(t, uint64(2), plan.Stats().Packs.Repack)
}

// TestIntegrityFailure covers spec scenario 6: a snapshot referencing a
// blob absent from every index aborts Phase B with a fatal error and
// performs no mutation.
func TestIntegrityFailure(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	bu := repotest.New(ctx, b)

	present := bu.AddBlob(blob.DataBlob, []byte("present"))
	packA := bu.FinishPack()

	missing := ids.Hash([]byte("never written anywhere"))
	treeID := addTree(bu, ids.IDs{present, missing})
	packTree := bu.FinishPack()

	repotest.SaveIndex(ctx, b, []pack.Descriptor{packA, packTree}, nil)
	saveSnapshotOverTree(ctx, b, treeID)

	repo := newRepo(ctx, b)
	_, err := prune.PlanPrune(ctx, repo, unlimitedOptions(t), nil)
	rtest.Assert(t, err != nil, "expected a fatal error for a missing blob")
}
