// Package repotest builds small fixture repositories directly against a
// backend.Backend, the way restic's internal/repository/testing.go and
// internal/restic/testing.go build fixtures for their own prune tests.
// It bypasses Packer/Indexer so tests can construct exact, hand-picked
// pack layouts (e.g. "blob b duplicated across packs A and B") instead of
// whatever layout the production write path would choose.
package repotest

import (
	"context"
	"time"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/index"
	"github.com/zxcat/rustic/internal/pack"
)

// Builder accumulates blobs into a single open pack at a time; FinishPack
// returns each finished pack's descriptor (the builder keeps no list of
// them), so a caller can assemble them into index files however a test
// scenario requires.
type Builder struct {
	ctx     context.Context
	backend backend.Backend

	buf   []byte
	blobs []blob.Descriptor
	typ   blob.Type
}

// New returns a builder writing through b.
func New(ctx context.Context, b backend.Backend) *Builder {
	return &Builder{ctx: ctx, backend: b}
}

// AddBlob adds a blob of the given type and content to the currently open
// pack and returns its id.
func (bu *Builder) AddBlob(typ blob.Type, data []byte) ids.ID {
	id := ids.Hash(data)
	if len(bu.blobs) > 0 && bu.typ != typ {
		panic("repotest: cannot mix blob types within one pack; call FinishPack first")
	}
	bu.typ = typ

	offset := uint32(len(bu.buf))
	bu.buf = append(bu.buf, data...)
	bu.blobs = append(bu.blobs, blob.Descriptor{
		Handle: blob.Handle{Type: typ, ID: id},
		Offset: offset,
		Length: uint32(len(data)),
	})
	return id
}

// FinishPack writes the currently open pack to the backend and returns its
// descriptor, resetting the builder for the next pack.
func (bu *Builder) FinishPack() pack.Descriptor {
	id := ids.Hash(bu.buf)
	if err := bu.backend.Save(bu.ctx, backend.PackFile, id, bu.buf); err != nil {
		panic(err)
	}

	now := time.Now()
	desc := pack.Descriptor{ID: id, Type: bu.typ, Time: &now, Blobs: bu.blobs}

	bu.buf = nil
	bu.blobs = nil
	return desc
}

// SaveIndex writes an index file naming packs, optionally carrying over
// packsToDelete, and returns its id.
func SaveIndex(ctx context.Context, b backend.Backend, packs []pack.Descriptor, packsToDelete ids.IDs) ids.ID {
	f := index.File{Packs: packs, PacksToDelete: packsToDelete}
	data, err := index.Encode(f)
	if err != nil {
		panic(err)
	}
	id := ids.Hash(data)
	if err := b.Save(ctx, backend.IndexFile, id, data); err != nil {
		panic(err)
	}
	return id
}

// SaveSnapshot saves a snapshot file and returns its id.
func SaveSnapshot(ctx context.Context, b backend.Backend, s blob.Snapshot) ids.ID {
	data, err := blob.EncodeSnapshot(s)
	if err != nil {
		panic(err)
	}
	id := ids.Hash(data)
	s.ID = id
	data, err = blob.EncodeSnapshot(s)
	if err != nil {
		panic(err)
	}
	if err := b.Save(ctx, backend.SnapshotFile, id, data); err != nil {
		panic(err)
	}
	return id
}
