// Package blob defines the blob-level data model: blob types,
// handles, pack-local descriptors, the used-blob set with its saturating
// counter, and the reachability scanner that walks snapshot trees to
// produce that set.
package blob

// Type classifies a blob as tree or data content.
type Type uint8

const (
	// DataBlob holds a chunk of file content.
	DataBlob Type = iota
	// TreeBlob holds a serialized directory listing.
	TreeBlob
	// InvalidBlob marks a pack whose contained blobs mix types; never
	// assigned to an individual blob.
	InvalidBlob
	// NumBlobTypes is the number of Type values above; it is never
	// assigned to a blob or pack. (An unset Type field reads as DataBlob.)
	NumBlobTypes
)

func (t Type) String() string {
	switch t {
	case DataBlob:
		return "data"
	case TreeBlob:
		return "tree"
	default:
		return "invalid"
	}
}
