// Package local is a filesystem-backed backend.Backend: every file type
// gets its own subdirectory, pack and index files are additionally
// sharded by the first two hex characters of their id (too many pack
// files in one directory hurts every filesystem this is likely to run
// on), and saves go through a temp-file-then-rename so a crash mid-write
// never leaves a half-written file at its final name.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zxcat/rustic/internal/backend"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
)

const dirMode = 0o700
const fileMode = 0o600

// Backend stores every file type under its own subdirectory of a single
// root directory.
type Backend struct {
	root string
}

var subdirs = map[backend.FileType]string{
	backend.PackFile:     "data",
	backend.IndexFile:    "index",
	backend.SnapshotFile: "snapshots",
	backend.KeyFile:      "keys",
	backend.LockFile:     "locks",
	backend.ConfigFile:   ".",
}

// Open opens (creating if necessary) a local backend rooted at dir.
func Open(dir string) (*Backend, error) {
	b := &Backend{root: dir}
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), dirMode); err != nil {
			return nil, errors.Wrapf(err, "creating %v", sub)
		}
	}
	return b, nil
}

func (b *Backend) dir(t backend.FileType, id ids.ID) string {
	sub := subdirs[t]
	if t == backend.PackFile || t == backend.IndexFile {
		return filepath.Join(b.root, sub, id.String()[:2])
	}
	return filepath.Join(b.root, sub)
}

func (b *Backend) path(t backend.FileType, id ids.ID) string {
	return filepath.Join(b.dir(t, id), id.String())
}

// List enumerates every file of type t present on disk.
func (b *Backend) List(_ context.Context, t backend.FileType) ([]backend.IDSize, error) {
	sub := subdirs[t]
	root := filepath.Join(b.root, sub)

	var out []backend.IDSize
	shards := []string{""}
	if t == backend.PackFile || t == backend.IndexFile {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", root)
		}
		shards = shards[:0]
		for _, e := range entries {
			if e.IsDir() {
				shards = append(shards, e.Name())
			}
		}
	}

	for _, shard := range shards {
		dir := filepath.Join(root, shard)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", dir)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			id, err := ids.ParseID(e.Name())
			if err != nil {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, err
			}
			out = append(out, backend.IDSize{ID: id, Size: info.Size()})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out, nil
}

// ReadFull reads an entire file.
func (b *Backend) ReadFull(_ context.Context, t backend.FileType, id ids.ID) ([]byte, error) {
	data, err := os.ReadFile(b.path(t, id))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v/%v", t, id.Str())
	}
	return data, nil
}

// ReadPartial reads length bytes starting at offset.
func (b *Backend) ReadPartial(_ context.Context, t backend.FileType, id ids.ID, offset, length uint32) ([]byte, error) {
	f, err := os.Open(b.path(t, id))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %v/%v", t, id.Str())
	}
	defer f.Close()

	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, int64(offset)); err != nil {
		return nil, errors.Wrapf(err, "reading %v/%v at offset %d", t, id.Str(), offset)
	}
	return buf, nil
}

// Save writes data under id, atomically. Saving an id that already exists
// is a no-op success, matching content-addressed storage's idempotence.
func (b *Backend) Save(_ context.Context, t backend.FileType, id ids.ID, data []byte) error {
	dir := b.dir(t, id)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrapf(err, "creating %v", dir)
	}

	dest := b.path(t, id)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	tmp, err := os.CreateTemp(dir, "tmp-")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "writing %v/%v", t, id.Str())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "renaming into place %v/%v", t, id.Str())
	}
	return nil
}

// Remove deletes the file at id. Removing a file that is already gone is
// not an error: the executor's removal steps must be safe to re-run after
// an interruption.
func (b *Backend) Remove(_ context.Context, t backend.FileType, id ids.ID) error {
	err := os.Remove(b.path(t, id))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %v/%v", t, id.Str())
	}
	return nil
}

var _ backend.Backend = (*Backend)(nil)
var _ fmt.Stringer = (*Backend)(nil)

// String returns the backend's root directory, for diagnostics.
func (b *Backend) String() string { return b.root }
