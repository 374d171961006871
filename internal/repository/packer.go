package repository

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/debug"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/pack"
)

// targetPackSize is the nominal size a freshly written pack accumulates to
// before being flushed and a new one started.
const targetPackSize = 4 << 20 // 4 MiB

// Packer is the executor's other write-side collaborator: it accepts
// raw (still-encrypted) blob bytes read out of repack victims, accumulates
// them into new pack files, and registers each finished pack with its
// Indexer.
//
// A Packer keeps a separate draft per blob type, so tree and data blobs
// written during the same repack never end up mixed in one output pack.
type Packer struct {
	backend backend.Backend
	indexer *Indexer

	mu      sync.Mutex
	drafts  map[blob.Type]*draft
}

type draft struct {
	buf   []byte
	blobs []blob.Descriptor
}

// NewPacker returns a packer that writes new packs to b and registers them
// with ix.
func NewPacker(b backend.Backend, ix *Indexer) *Packer {
	return &Packer{backend: b, indexer: ix, drafts: make(map[blob.Type]*draft)}
}

// Add appends one blob's raw bytes to the in-progress pack of its type,
// flushing that pack first if it is non-empty and appending data would take
// it past targetPackSize.
func (p *Packer) Add(ctx context.Context, id ids.ID, typ blob.Type, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.drafts[typ]
	if !ok {
		d = &draft{}
		p.drafts[typ] = d
	}

	if len(d.buf) > 0 && len(d.buf)+len(data) > targetPackSize {
		if err := p.flushLocked(ctx, typ); err != nil {
			return err
		}
		d = p.drafts[typ]
	}

	offset := uint32(len(d.buf))
	d.buf = append(d.buf, data...)
	d.blobs = append(d.blobs, blob.Descriptor{
		Handle: blob.Handle{Type: typ, ID: id},
		Offset: offset,
		Length: uint32(len(data)),
	})
	return nil
}

// Finalize flushes every in-progress draft, writing out the final,
// possibly undersized packs.
func (p *Packer) Finalize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for typ, d := range p.drafts {
		if len(d.blobs) == 0 {
			continue
		}
		if err := p.flushLocked(ctx, typ); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) flushLocked(ctx context.Context, typ blob.Type) error {
	d := p.drafts[typ]
	if len(d.blobs) == 0 {
		return nil
	}

	id, err := randomID()
	if err != nil {
		return errors.Wrap(err, "generating pack id")
	}

	if err := p.backend.Save(ctx, backend.PackFile, id, d.buf); err != nil {
		return errors.Wrapf(err, "saving pack %v", id.Str())
	}

	now := time.Now()
	desc := pack.Descriptor{ID: id, Type: typ, Time: &now, Blobs: d.blobs}
	if err := p.indexer.Register(ctx, desc); err != nil {
		return err
	}

	debug.Log("packer: wrote pack %v (%s, %d blobs, %d bytes)", id.Str(), typ, len(d.blobs), len(d.buf))

	p.drafts[typ] = &draft{}
	return nil
}

func randomID() (ids.ID, error) {
	var id ids.ID
	if _, err := rand.Read(id[:]); err != nil {
		return ids.ID{}, err
	}
	return id, nil
}
