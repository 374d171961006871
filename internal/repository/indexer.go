package repository

import (
	"context"
	"sync"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/debug"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/index"
	"github.com/zxcat/rustic/internal/pack"
)

// maxBlobsPerIndex bounds how many blob descriptors accumulate in one
// in-progress index file before it is flushed to the backend, mirroring
// the rebuild threshold that also drives the index planner.
const maxBlobsPerIndex = 10_000

// Indexer is the executor's write-side collaborator: it
// accumulates pack descriptors (from repacked and kept packs alike) and
// writes them out as new index files. It is shared between the executor
// and the Packer, which registers each pack it finalizes directly with the
// indexer — hence the internal mutex.
type Indexer struct {
	backend backend.Backend

	mu      sync.Mutex
	cur     index.File
	blobLen int
	saved   ids.IDs
}

// NewIndexer returns an indexer that writes new index files to b.
func NewIndexer(b backend.Backend) *Indexer {
	return &Indexer{backend: b}
}

// Register adds a pack descriptor to the indexer's pending index file,
// flushing the pending file to the backend first if it is non-empty and
// adding p's blobs would take it past maxBlobsPerIndex.
func (ix *Indexer) Register(ctx context.Context, p pack.Descriptor) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.blobLen+len(p.Blobs) > maxBlobsPerIndex && ix.blobLen > 0 {
		if err := ix.flushLocked(ctx); err != nil {
			return err
		}
	}

	ix.cur.Packs = append(ix.cur.Packs, p)
	ix.blobLen += len(p.Blobs)
	return nil
}

// Finalize flushes any partially filled index file and returns the ids of
// every index file the indexer wrote.
func (ix *Indexer) Finalize(ctx context.Context) (ids.IDs, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.cur.Packs) > 0 {
		if err := ix.flushLocked(ctx); err != nil {
			return nil, err
		}
	}
	return ix.saved, nil
}

func (ix *Indexer) flushLocked(ctx context.Context) error {
	data, err := index.Encode(ix.cur)
	if err != nil {
		return err
	}

	id := ids.Hash(data)
	if err := ix.backend.Save(ctx, backend.IndexFile, id, data); err != nil {
		return errors.Wrapf(err, "saving index file %v", id.Str())
	}

	debug.Log("indexer: wrote index %v with %d packs, %d blobs", id.Str(), len(ix.cur.Packs), ix.blobLen)

	ix.saved = append(ix.saved, id)
	ix.cur = index.File{}
	ix.blobLen = 0
	return nil
}
