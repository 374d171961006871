package mem_test

import (
	"context"
	"testing"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/backend/mem"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/rtest"
)

func TestSaveReadFullRoundtrip(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	id := ids.Hash([]byte("data"))

	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("hello world")))

	got, err := b.ReadFull(ctx, backend.PackFile, id)
	rtest.OK(t, err)
	rtest.Equals(t, "hello world", string(got))
}

func TestReadPartial(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	id := ids.Hash([]byte("data"))
	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("0123456789")))

	got, err := b.ReadPartial(ctx, backend.PackFile, id, 3, 4)
	rtest.OK(t, err)
	rtest.Equals(t, "3456", string(got))
}

func TestReadPartialOutOfBounds(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	id := ids.Hash([]byte("data"))
	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("short")))

	_, err := b.ReadPartial(ctx, backend.PackFile, id, 0, 100)
	rtest.Assert(t, err != nil, "expected an error reading past the end of the file")
}

func TestReadMissingFile(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	_, err := b.ReadFull(ctx, backend.PackFile, ids.Hash([]byte("nope")))
	rtest.Assert(t, err != nil, "expected an error for a file that was never saved")
}

func TestSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	id := ids.Hash([]byte("data"))

	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("first")))
	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("second, should be ignored")))

	got, err := b.ReadFull(ctx, backend.PackFile, id)
	rtest.OK(t, err)
	rtest.Equals(t, "first", string(got))
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	id := ids.Hash([]byte("data"))
	rtest.OK(t, b.Save(ctx, backend.PackFile, id, []byte("x")))

	rtest.OK(t, b.Remove(ctx, backend.PackFile, id))
	rtest.OK(t, b.Remove(ctx, backend.PackFile, id)) // already gone, must not error

	_, err := b.ReadFull(ctx, backend.PackFile, id)
	rtest.Assert(t, err != nil, "file should be gone after removal")
}

func TestListFiltersByType(t *testing.T) {
	ctx := context.Background()
	b := mem.New()
	packID := ids.Hash([]byte("pack"))
	idxID := ids.Hash([]byte("index"))

	rtest.OK(t, b.Save(ctx, backend.PackFile, packID, []byte("pack data")))
	rtest.OK(t, b.Save(ctx, backend.IndexFile, idxID, []byte("idx")))

	packs, err := b.List(ctx, backend.PackFile)
	rtest.OK(t, err)
	rtest.Equals(t, 1, len(packs))
	rtest.Assert(t, packs[0].ID.Equal(packID), "expected only the pack file listed")
	rtest.Equals(t, int64(len("pack data")), packs[0].Size)
}
