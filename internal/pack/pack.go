// Package pack describes the pack descriptor:
// the catalog-level view of an immutable pack file, as carried by an index
// file. Blob-to-pack serialization itself (the encrypted on-disk layout) is
// an out-of-scope external collaborator; only the structure an
// index needs to describe a pack is specified here.
package pack

import (
	"time"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/ids"
)

// Descriptor is a pack as named by an index: its id, the dominant blob
// type of its contents, an optional creation time, and the ordered list of
// blobs it holds.
//
// Cacheable is an advisory hint consumed only by the decision engine's
// --repack-cacheable-only filter: packs lacking it
// are excluded from becoming repack candidates when that flag is set.
type Descriptor struct {
	ID        ids.ID
	Type      blob.Type
	Time      *time.Time
	Blobs     []blob.Descriptor
	Cacheable bool
}

// HeaderSize estimates the on-disk byte cost of a pack's trailing header:
// a fixed per-pack overhead plus a fixed-size record per blob. Nothing in
// this module compares it against the sizes reported by the backend's file
// listing; the exact serialization is the out-of-scope blob-to-pack
// collaborator's concern.
func HeaderSize(blobCount int) int {
	const perPackOverhead = 4 + 32 // length prefix + crypto MAC/footer, approximated
	const perBlobRecord = 1 + 4 + 4 + 32 // type + offset + length + blob id
	return perPackOverhead + blobCount*perBlobRecord
}

// Size returns the sum of a pack's blob lengths plus its estimated header
// overhead — an estimate of a pack's on-disk size that assumes the header
// is present. Packs written by this module's Packer and by repotest hold
// only the concatenated blob bytes, so their files are smaller.
func (d Descriptor) Size() uint64 {
	var total uint64
	for _, b := range d.Blobs {
		total += uint64(b.Length)
	}
	return total + uint64(HeaderSize(len(d.Blobs)))
}
