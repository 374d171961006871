// Package mem implements backend.Backend entirely in process memory. It
// stands in for a real block storage backend, used by every prune test
// the way restic's own internal/backend/mem backs its prune tests.
package mem

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
)

const shardCount = 16

type key struct {
	t  backend.FileType
	id ids.ID
}

// shard is one lock-striped partition of the backend's storage: its own
// mutex guarding its own slice of the keyspace, so two files hashing to
// different shards never contend.
type shard struct {
	mu    sync.RWMutex
	files map[key][]byte
}

// Backend is an in-memory backend.Backend. The zero value is not usable;
// construct with New. Safe for concurrent use. Storage is striped across
// shardCount shards, keyed by the same non-cryptographic hash restic's own
// in-memory backend reaches for when it hands out an integrity Hasher.
type Backend struct {
	shards [shardCount]*shard
}

// New returns an empty in-memory backend.
func New() *Backend {
	b := &Backend{}
	for i := range b.shards {
		b.shards[i] = &shard{files: make(map[key][]byte)}
	}
	return b
}

func shardOf(id ids.ID) int {
	return int(xxhash.Sum64(id[:]) % shardCount)
}

func (b *Backend) shardFor(id ids.ID) *shard {
	return b.shards[shardOf(id)]
}

func (b *Backend) List(_ context.Context, t backend.FileType) ([]backend.IDSize, error) {
	var out []backend.IDSize
	for _, s := range b.shards {
		s.mu.RLock()
		for k, data := range s.files {
			if k.t != t {
				continue
			}
			out = append(out, backend.IDSize{ID: k.id, Size: int64(len(data))})
		}
		s.mu.RUnlock()
	}
	return out, nil
}

func (b *Backend) ReadFull(_ context.Context, t backend.FileType, id ids.ID) ([]byte, error) {
	s := b.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[key{t, id}]
	if !ok {
		return nil, errors.Errorf("%s/%s does not exist", t, id.Str())
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *Backend) ReadPartial(_ context.Context, t backend.FileType, id ids.ID, offset, length uint32) ([]byte, error) {
	s := b.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[key{t, id}]
	if !ok {
		return nil, errors.Errorf("%s/%s does not exist", t, id.Str())
	}
	if uint64(offset)+uint64(length) > uint64(len(data)) {
		return nil, errors.Errorf("read out of bounds for %s/%s", t, id.Str())
	}
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, nil
}

func (b *Backend) Save(_ context.Context, t backend.FileType, id ids.ID, data []byte) error {
	s := b.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key{t, id}]; ok {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.files[key{t, id}] = cp
	return nil
}

func (b *Backend) Remove(_ context.Context, t backend.FileType, id ids.ID) error {
	s := b.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key{t, id})
	return nil
}
