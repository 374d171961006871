package prune

import (
	"context"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/pack"
	"github.com/zxcat/rustic/internal/repository"
)

// Printer receives the executor's progress narration, matching the
// restic/rustic idiom of a verbosity-gated status line per major step.
// Callers not interested in narration pass a no-op implementation.
type Printer interface {
	P(format string, args ...interface{})
}

// Execute runs the executor, applying p's decisions
// to the backend. The step ordering below is the crash-safety invariant:
// an interruption at any point leaves the repository in
// a state a subsequent prune run can converge from without corruption,
// because nothing is removed until everything that replaces it has
// already been durably written.
func (p Plan) Execute(ctx context.Context, printer Printer) error {
	if len(p.unrefPackIDs) > 0 {
		printer.P("removing not needed unindexed pack files...\n")
	}
	for _, id := range p.unrefPackIDs {
		if err := p.repo.Backend.Remove(ctx, backend.PackFile, id); err != nil {
			return errors.Wrapf(err, "removing unreferenced pack %v", id.Str())
		}
	}

	if len(p.rewrite) == 0 {
		printer.P("nothing to do!\n")
		return nil
	}

	if p.stats.Packs.Repack > 0 {
		printer.P("repacking packs and rebuilding index...\n")
	} else {
		printer.P("rebuilding index...\n")
	}

	indexer := repository.NewIndexer(p.repo.Backend)
	packer := repository.NewPacker(p.repo.Backend, indexer)

	var packsRemove, indexesRemove ids.IDs

	for _, idx := range p.rewrite {
		for _, pk := range idx.Packs {
			switch pk.Action {
			case ActionRepack:
				for _, b := range pk.Blobs {
					if !p.used.Consume(b.ID) {
						// unused, or already carried forward by a kept
						// pack or an earlier repacked pack
						continue
					}
					data, err := p.repo.Backend.ReadPartial(ctx, backend.PackFile, pk.ID, b.Offset, b.Length)
					if err != nil {
						return errors.Wrapf(err, "reading blob %v from pack %v", b.ID.Str(), pk.ID.Str())
					}
					if err := packer.Add(ctx, b.ID, b.Type, data); err != nil {
						return errors.Wrapf(err, "repacking blob %v", b.ID.Str())
					}
				}
				packsRemove = append(packsRemove, pk.ID)

			case ActionKeep:
				desc := pack.Descriptor{ID: pk.ID, Type: pk.Type, Time: pk.Time, Blobs: pk.Blobs, Cacheable: pk.Cacheable}
				if err := indexer.Register(ctx, desc); err != nil {
					return errors.Wrapf(err, "re-registering pack %v", pk.ID.Str())
				}

			case ActionRemove:
				packsRemove = append(packsRemove, pk.ID)
			}
		}
		indexesRemove = append(indexesRemove, idx.ID)
	}

	if err := packer.Finalize(ctx); err != nil {
		return errors.Wrap(err, "finalizing repacked packs")
	}
	if _, err := indexer.Finalize(ctx); err != nil {
		return errors.Wrap(err, "finalizing rebuilt index files")
	}

	if len(packsRemove) > 0 {
		printer.P("removing old pack files...\n")
	}
	for _, id := range packsRemove {
		if err := p.repo.Backend.Remove(ctx, backend.PackFile, id); err != nil {
			return errors.Wrapf(err, "removing pack %v", id.Str())
		}
	}

	if len(indexesRemove) > 0 {
		printer.P("removing old index files...\n")
	}
	for _, id := range indexesRemove {
		if err := p.repo.Backend.Remove(ctx, backend.IndexFile, id); err != nil {
			return errors.Wrapf(err, "removing index %v", id.Str())
		}
	}

	return nil
}
