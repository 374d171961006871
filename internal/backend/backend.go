package backend

import (
	"context"

	"github.com/zxcat/rustic/internal/ids"
)

// IDSize is a (id, size) pair as returned by List.
type IDSize struct {
	ID   ids.ID
	Size int64
}

// Backend is the block storage contract the prune engine consumes.
// It reads and writes typed files by content id; decoding and
// decryption of those files into domain objects is layered on top by
// StreamAll.
type Backend interface {
	// List enumerates every file of the given type along with its size in
	// bytes.
	List(ctx context.Context, t FileType) ([]IDSize, error)

	// ReadFull returns the entire contents of the file identified by
	// (t, id).
	ReadFull(ctx context.Context, t FileType, id ids.ID) ([]byte, error)

	// ReadPartial returns the byte range [offset, offset+length) of the
	// (still encrypted) file identified by (t, id).
	ReadPartial(ctx context.Context, t FileType, id ids.ID, offset, length uint32) ([]byte, error)

	// Save writes data as a new file of the given type. The backend
	// guarantees the file is either fully durable or entirely absent; it
	// never exposes a partially written file to a later List or
	// ReadPartial call.
	Save(ctx context.Context, t FileType, id ids.ID, data []byte) error

	// Remove deletes the file identified by (t, id). Removing a file that
	// does not exist is not an error.
	Remove(ctx context.Context, t FileType, id ids.ID) error
}

// Decoder turns the raw bytes of a typed file into a domain object T. It
// models decryption plus deserialization, both out-of-scope external
// collaborators.
type Decoder[T any] func(data []byte) (T, error)

// StreamAll reads every file of type t, decodes it with decode, and calls
// visit for each (id, decoded value) pair. It stops and returns the first
// error encountered.
func StreamAll[T any](ctx context.Context, b Backend, t FileType, decode Decoder[T], visit func(id ids.ID, value T) error) error {
	entries, err := b.List(ctx, t)
	if err != nil {
		return err
	}

	for _, e := range entries {
		data, err := b.ReadFull(ctx, t, e.ID)
		if err != nil {
			return err
		}

		value, err := decode(data)
		if err != nil {
			return err
		}

		if err := visit(e.ID, value); err != nil {
			return err
		}
	}

	return nil
}
