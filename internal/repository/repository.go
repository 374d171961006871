// Package repository ties the backend, index and blob packages together
// into the read/write primitives the prune engine is built on. The prune engine itself lives in the sibling
// internal/prune package.
package repository

import (
	"context"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/index"
)

// Repository is a read-capable indexed backend: it can
// stream all files of a type and resolve a tree-blob id to its decoded
// directory entries, via a MasterIndex built once by LoadIndexes.
type Repository struct {
	Backend backend.Backend
	Index   *index.MasterIndex
}

// New wraps b. Callers must call LoadIndexes before using the
// tree-loading or blob-location methods.
func New(b backend.Backend) *Repository {
	return &Repository{Backend: b, Index: index.NewMasterIndex()}
}

// LoadIndexes reads every index file in the backend and merges it into
// r.Index, returning each index's id alongside its decoded contents so
// callers (the prune index loader) can track index-file identity.
func (r *Repository) LoadIndexes(ctx context.Context) ([]IndexEntry, error) {
	var entries []IndexEntry
	err := backend.StreamAll(ctx, r.Backend, backend.IndexFile, index.Decode, func(id ids.ID, f index.File) error {
		r.Index.Merge(f)
		entries = append(entries, IndexEntry{ID: id, File: f})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading index files")
	}
	return entries, nil
}

// IndexEntry pairs a loaded index file with the id it is stored under.
type IndexEntry struct {
	ID   ids.ID
	File index.File
}

// LoadSnapshots reads every snapshot file in the backend.
func (r *Repository) LoadSnapshots(ctx context.Context) ([]blob.Snapshot, error) {
	var snaps []blob.Snapshot
	err := backend.StreamAll(ctx, r.Backend, backend.SnapshotFile, blob.DecodeSnapshot, func(_ ids.ID, s blob.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading snapshots")
	}
	return snaps, nil
}

// LoadTree resolves id via the master index and decodes it, implementing
// blob.TreeLoader.
func (r *Repository) LoadTree(ctx context.Context, id ids.ID) (*blob.Tree, error) {
	loc, ok := r.Index.Lookup(blob.Handle{Type: blob.TreeBlob, ID: id})
	if !ok {
		return nil, errors.Errorf("tree blob %v not found in any index", id.Str())
	}

	data, err := r.Backend.ReadPartial(ctx, backend.PackFile, loc.PackID, loc.Offset, loc.Length)
	if err != nil {
		return nil, errors.Wrapf(err, "reading tree blob %v", id.Str())
	}

	t, err := blob.DecodeTree(data)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListPacks enumerates every pack file actually present in the backend.
func (r *Repository) ListPacks(ctx context.Context) (map[ids.ID]int64, error) {
	entries, err := r.Backend.List(ctx, backend.PackFile)
	if err != nil {
		return nil, errors.Wrap(err, "listing packs")
	}
	out := make(map[ids.ID]int64, len(entries))
	for _, e := range entries {
		out[e.ID] = e.Size
	}
	return out, nil
}
