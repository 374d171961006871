package index_test

import (
	"testing"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/index"
	"github.com/zxcat/rustic/internal/pack"
	"github.com/zxcat/rustic/internal/rtest"
)

func TestMasterIndexMergeAndLookup(t *testing.T) {
	packA := ids.Hash([]byte("packA"))
	packB := ids.Hash([]byte("packB"))
	blobX := ids.Hash([]byte("x"))
	blobY := ids.Hash([]byte("y"))

	fileA := index.File{Packs: []pack.Descriptor{
		{ID: packA, Type: blob.DataBlob, Blobs: []blob.Descriptor{
			{Handle: blob.Handle{Type: blob.DataBlob, ID: blobX}, Offset: 0, Length: 5},
		}},
	}}
	fileB := index.File{Packs: []pack.Descriptor{
		{ID: packB, Type: blob.DataBlob, Blobs: []blob.Descriptor{
			{Handle: blob.Handle{Type: blob.DataBlob, ID: blobY}, Offset: 5, Length: 7},
		}},
	}}

	m := index.NewMasterIndex()
	m.Merge(fileA)
	m.Merge(fileB)

	rtest.Equals(t, 2, m.Len())

	loc, ok := m.Lookup(blob.Handle{Type: blob.DataBlob, ID: blobX})
	rtest.Assert(t, ok, "expected blobX to be found")
	rtest.Assert(t, loc.PackID.Equal(packA), "blobX should resolve to packA")
	rtest.Equals(t, uint32(0), loc.Offset)
	rtest.Equals(t, uint32(5), loc.Length)

	_, ok = m.Lookup(blob.Handle{Type: blob.DataBlob, ID: ids.Hash([]byte("unknown"))})
	rtest.Assert(t, !ok, "unknown blob must not resolve")
}

func TestMasterIndexEachVisitsEveryBlob(t *testing.T) {
	packA := ids.Hash([]byte("packA"))
	blobX := ids.Hash([]byte("x"))
	blobY := ids.Hash([]byte("y"))

	f := index.File{Packs: []pack.Descriptor{
		{ID: packA, Type: blob.DataBlob, Blobs: []blob.Descriptor{
			{Handle: blob.Handle{Type: blob.DataBlob, ID: blobX}, Offset: 0, Length: 3},
			{Handle: blob.Handle{Type: blob.DataBlob, ID: blobY}, Offset: 3, Length: 4},
		}},
	}}

	m := index.NewMasterIndex()
	m.Merge(f)

	seen := map[ids.ID]bool{}
	m.Each(func(packID ids.ID, b blob.Descriptor) {
		rtest.Assert(t, packID.Equal(packA), "unexpected pack id from Each")
		seen[b.ID] = true
	})

	rtest.Equals(t, 2, len(seen))
	rtest.Assert(t, seen[blobX] && seen[blobY], "Each must visit every blob")
}

func TestMasterIndexMergeOverwritesDuplicateHandle(t *testing.T) {
	blobX := ids.Hash([]byte("x"))
	packOld := ids.Hash([]byte("old"))
	packNew := ids.Hash([]byte("new"))

	m := index.NewMasterIndex()
	m.Merge(index.File{Packs: []pack.Descriptor{
		{ID: packOld, Blobs: []blob.Descriptor{{Handle: blob.Handle{Type: blob.DataBlob, ID: blobX}, Offset: 0, Length: 1}}},
	}})
	m.Merge(index.File{Packs: []pack.Descriptor{
		{ID: packNew, Blobs: []blob.Descriptor{{Handle: blob.Handle{Type: blob.DataBlob, ID: blobX}, Offset: 9, Length: 1}}},
	}})

	loc, ok := m.Lookup(blob.Handle{Type: blob.DataBlob, ID: blobX})
	rtest.Assert(t, ok, "blobX should resolve")
	rtest.Assert(t, loc.PackID.Equal(packNew), "later merge should win for a duplicate handle")
	rtest.Equals(t, 1, m.Len())
}
