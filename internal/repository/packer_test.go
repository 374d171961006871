package repository_test

import (
	"context"
	"testing"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/backend/mem"
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/repository"
	"github.com/zxcat/rustic/internal/rtest"
)

func TestPackerFinalizeWritesPackAndRegistersIndex(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	ix := repository.NewIndexer(b)
	p := repository.NewPacker(b, ix)

	id := ids.Hash([]byte("blob"))
	rtest.OK(t, p.Add(ctx, id, blob.DataBlob, []byte("some data")))
	rtest.OK(t, p.Finalize(ctx))

	_, err := ix.Finalize(ctx)
	rtest.OK(t, err)

	packs, err := b.List(ctx, backend.PackFile)
	rtest.OK(t, err)
	rtest.Equals(t, 1, len(packs))

	idxFiles, err := b.List(ctx, backend.IndexFile)
	rtest.OK(t, err)
	rtest.Equals(t, 1, len(idxFiles))
}

func TestPackerSeparatesBlobTypesIntoDistinctPacks(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	ix := repository.NewIndexer(b)
	p := repository.NewPacker(b, ix)

	rtest.OK(t, p.Add(ctx, ids.Hash([]byte("data")), blob.DataBlob, []byte("data bytes")))
	rtest.OK(t, p.Add(ctx, ids.Hash([]byte("tree")), blob.TreeBlob, []byte("tree bytes")))
	rtest.OK(t, p.Finalize(ctx))

	packs, err := b.List(ctx, backend.PackFile)
	rtest.OK(t, err)
	rtest.Equals(t, 2, len(packs))
}

// TestPackerFlushesOnSizeThreshold exercises the target-pack-size flush:
// adding more bytes than fit in one pack forces an earlier pack to close
// before the new blob is appended, producing two pack files rather than
// one combined pack.
func TestPackerFlushesOnSizeThreshold(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	ix := repository.NewIndexer(b)
	p := repository.NewPacker(b, ix)

	big := make([]byte, 3<<20) // 3 MiB
	rtest.OK(t, p.Add(ctx, ids.Hash([]byte("first")), blob.DataBlob, big))
	rtest.OK(t, p.Add(ctx, ids.Hash([]byte("second")), blob.DataBlob, big)) // pushes past the 4 MiB target
	rtest.OK(t, p.Finalize(ctx))

	packs, err := b.List(ctx, backend.PackFile)
	rtest.OK(t, err)
	rtest.Equals(t, 2, len(packs))
}
