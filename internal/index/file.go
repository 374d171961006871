// Package index implements the catalog of pack descriptors: the on-disk
// index file shape and the merged in-memory MasterIndex. The write-side
// Indexer used by the executor lives in internal/repository.
//
// Serialization of an index file's bytes is the out-of-scope
// blob-to-pack-serialization collaborator. A JSON codec is provided here
// purely so the package is self-contained for tests; production
// deployments are expected to swap Encode/Decode for the real encrypted
// wire format.
package index

import (
	"encoding/json"
	"time"

	"github.com/zxcat/rustic/internal/blob"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/pack"
)

// File is the decoded contents of one on-disk index file: the packs it
// describes, plus the opaque packs-to-delete carry-over list.
type File struct {
	Packs         []pack.Descriptor
	PacksToDelete ids.IDs
}

type wireBlob struct {
	Type   uint8  `json:"type"`
	ID     ids.ID `json:"id"`
	Offset uint32 `json:"offset"`
	Length uint32 `json:"length"`
}

type wirePack struct {
	ID        ids.ID     `json:"id"`
	Type      uint8      `json:"type"`
	Cacheable bool       `json:"cacheable"`
	TimeUnix  *int64     `json:"time,omitempty"`
	Blobs     []wireBlob `json:"blobs"`
}

type wireFile struct {
	Packs         []wirePack `json:"packs"`
	PacksToDelete ids.IDs    `json:"packs_to_delete,omitempty"`
}

// Encode serializes f.
func Encode(f File) ([]byte, error) {
	w := wireFile{PacksToDelete: f.PacksToDelete}
	for _, p := range f.Packs {
		wp := wirePack{ID: p.ID, Type: uint8(p.Type), Cacheable: p.Cacheable}
		if p.Time != nil {
			u := p.Time.Unix()
			wp.TimeUnix = &u
		}
		for _, b := range p.Blobs {
			wp.Blobs = append(wp.Blobs, wireBlob{
				Type:   uint8(b.Type),
				ID:     b.ID,
				Offset: b.Offset,
				Length: b.Length,
			})
		}
		w.Packs = append(w.Packs, wp)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(err, "encode index file")
	}
	return data, nil
}

// Decode deserializes an index file's bytes.
func Decode(data []byte) (File, error) {
	var w wireFile
	if err := json.Unmarshal(data, &w); err != nil {
		return File{}, errors.Wrap(err, "decode index file")
	}

	f := File{PacksToDelete: w.PacksToDelete}
	for _, wp := range w.Packs {
		p := pack.Descriptor{ID: wp.ID, Type: blobTypeFromWire(wp.Type), Cacheable: wp.Cacheable}
		if wp.TimeUnix != nil {
			t := unixTime(*wp.TimeUnix)
			p.Time = &t
		}
		for _, wb := range wp.Blobs {
			p.Blobs = append(p.Blobs, blobDescriptorFromWire(wb))
		}
		f.Packs = append(f.Packs, p)
	}
	return f, nil
}

func blobTypeFromWire(t uint8) blob.Type {
	return blob.Type(t)
}

func blobDescriptorFromWire(wb wireBlob) blob.Descriptor {
	return blob.Descriptor{
		Handle: blob.Handle{Type: blob.Type(wb.Type), ID: wb.ID},
		Offset: wb.Offset,
		Length: wb.Length,
	}
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
