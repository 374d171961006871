package blob

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zxcat/rustic/internal/debug"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
)

// TreeLoader resolves a tree-blob id to its decoded directory entries. It
// is the only backend capability the reachability scanner needs.
type TreeLoader interface {
	LoadTree(ctx context.Context, id ids.ID) (*Tree, error)
}

// ProgressCounter receives one tick per tree loaded (snapshot roots and
// subtrees alike). It may be nil.
type ProgressCounter interface {
	Add(n uint64)
}

// parallelism bounds the number of concurrent LoadTree calls in flight.
var parallelism = max(4, runtime.GOMAXPROCS(0))

// Find performs the breadth-first, streaming reachability walk: starting
// from roots (snapshot root tree-blob ids), it
// descends every tree exactly once and seeds used with every blob id it
// encounters (snapshot roots, file contents, subtree references), with
// counter 0. A tree id re-encountered during the walk contributes no new
// work (cycle tolerance); the resulting set does not depend on the order
// trees were visited (order-independence).
//
// Every level's trees are loaded and processed by a pool of worker
// goroutines, the same way restic's own tree streamer calls its process
// callback directly from the worker goroutines rather than collecting
// decoded trees first and walking them back on the calling goroutine: a
// tree's nodes are folded into used and the next frontier as soon as that
// tree's own load completes, concurrently with every other in-flight tree
// at the same level.
//
// Any backend read, deserialization or decryption error aborts the walk;
// partial results are not usable and the caller must discard used.
func Find(ctx context.Context, loader TreeLoader, roots ids.IDs, used *UsedSet, progress ProgressCounter) error {
	var mu sync.Mutex // guards visited and next below
	visited := ids.NewSet()

	frontier := make(ids.IDs, 0, len(roots))
	for _, root := range roots {
		if visited.Has(root) {
			continue
		}
		visited.Insert(root)
		used.Insert(root)
		frontier = append(frontier, root)
	}

	for len(frontier) > 0 {
		var next ids.IDs

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for _, id := range frontier {
			id := id
			g.Go(func() error {
				t, err := loader.LoadTree(gctx, id)
				if err != nil {
					return errors.Wrapf(err, "loading tree %v", id.Str())
				}

				for _, node := range t.Nodes {
					switch node.Type {
					case NodeFile:
						for _, c := range node.Content {
							used.Insert(c)
						}
					case NodeDir:
						if node.Subtree == nil {
							continue
						}
						st := *node.Subtree

						mu.Lock()
						isNew := !visited.Has(st)
						if isNew {
							visited.Insert(st)
						}
						mu.Unlock()

						if !isNew {
							continue
						}
						used.Insert(st)

						mu.Lock()
						next = append(next, st)
						mu.Unlock()
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if progress != nil {
			progress.Add(uint64(len(frontier)))
		}

		debug.Log("find: processed %d trees, %d new subtrees", len(frontier), len(next))
		frontier = next
	}

	return nil
}
