// Package ids implements the content-addressed identifiers used throughout
// the repository: blobs, index files and snapshots are named by the
// SHA-256 hash of their contents; packs written by the repository's Packer
// get a random ID instead.
package ids

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/zxcat/rustic/internal/errors"
)

// Length is the size of an ID in bytes.
const Length = sha256.Size

// ID is a 32-byte content hash. Equality of two IDs defines equality of the
// blobs, packs or files they name.
type ID [Length]byte

// Hash computes the ID of data.
func Hash(data []byte) ID {
	return sha256.Sum256(data)
}

// ParseID parses s, a 64-character hex string, into an ID.
func ParseID(s string) (ID, error) {
	var id ID

	if len(s) != hex.EncodedLen(Length) {
		return ID{}, errors.Errorf("invalid length for ID: %q", s)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, errors.Wrap(err, "hex.DecodeString")
	}

	copy(id[:], b)
	return id, nil
}

// String returns the hexadecimal encoding of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Str returns the shortened, human-readable form of id (the first 8 hex
// characters), used in log and error messages.
func (id ID) Str() string {
	if id.IsNull() {
		return "[null]"
	}
	return hex.EncodeToString(id[:4])
}

// IsNull reports whether id is the zero ID.
func (id ID) IsNull() bool {
	return id == ID{}
}

// Equal reports whether id and other refer to the same content.
func (id ID) Equal(other ID) bool {
	return id == other
}

// Compare returns -1, 0 or 1 depending on the byte-wise ordering of id and
// other. It gives IDs (and therefore blob/pack iteration order derived from
// sorted ID slices) a total order.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalJSON encodes id as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes id from a JSON string.
func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "json.Unmarshal")
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// IDs is an ordered list of IDs.
type IDs []ID

func (ids IDs) Len() int           { return len(ids) }
func (ids IDs) Less(i, j int) bool { return ids[i].Compare(ids[j]) < 0 }
func (ids IDs) Swap(i, j int)      { ids[i], ids[j] = ids[j], ids[i] }
