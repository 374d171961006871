// Package cache decorates a backend.Backend with a bounded, in-process
// read-through cache for small, frequently-reread typed files (snapshots
// and index files), mirroring restic's internal/backend/cache and
// internal/blobcache (both backed by a hashicorp/golang-lru LRU).
//
// Packs are deliberately never cached here: they are streamed in large
// byte ranges during repack and would blow the cache budget for no
// benefit, matching restic's own distinction between its pack cache (disk
// based) and its metadata cache (in-memory LRU).
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/ids"
)

type entryKey struct {
	t  backend.FileType
	id ids.ID
}

// Backend wraps another backend.Backend, caching whole-file reads of
// non-pack types.
type Backend struct {
	backend.Backend
	cache *lru.Cache[entryKey, []byte]
}

// New wraps inner with an LRU cache holding the raw bytes of up to
// capacity files.
func New(inner backend.Backend, capacity int) (*Backend, error) {
	c, err := lru.New[entryKey, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Backend{Backend: inner, cache: c}, nil
}

func cacheable(t backend.FileType) bool {
	return t == backend.IndexFile || t == backend.SnapshotFile || t == backend.ConfigFile
}

// ReadFull serves index/snapshot/config reads from the LRU cache when
// present, falling through to the wrapped backend on a miss and
// populating the cache with the result.
func (b *Backend) ReadFull(ctx context.Context, t backend.FileType, id ids.ID) ([]byte, error) {
	if !cacheable(t) {
		return b.Backend.ReadFull(ctx, t, id)
	}

	k := entryKey{t, id}
	if data, ok := b.cache.Get(k); ok {
		return data, nil
	}

	data, err := b.Backend.ReadFull(ctx, t, id)
	if err != nil {
		return nil, err
	}
	b.cache.Add(k, data)
	return data, nil
}

// Remove evicts id from the cache in addition to removing it from the
// wrapped backend, so a later read after a fresh Save of the same id never
// observes stale cached bytes.
func (b *Backend) Remove(ctx context.Context, t backend.FileType, id ids.ID) error {
	b.cache.Remove(entryKey{t, id})
	return b.Backend.Remove(ctx, t, id)
}
