// Package persist implements BLZ's on-disk wire formats: the `meta` file,
// the `leftover` file, and the `__attrs__` sidecar (spec.md §6), the
// generalization of memchunk.go's magic+version+footer header shape from
// "one chunk" to "one array's metadata."
package persist

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

var metaMagic = [4]byte{'B', 'L', 'Z', 0}

const metaVersion = uint32(1)

// Meta is the decoded contents of a BArray's `meta` file (spec.md §6).
type Meta struct {
	Dtype    atom.Atom
	Chunklen int
	Len      int
	Dflt     []byte // exactly Dtype.ItemSize() bytes
	Params   chunkenc.Params
}

// EncodeMeta serializes m into the binary layout spec.md §6 documents:
// {magic, version, flags} then self-describing {dtype, chunklen, len,
// itemsize, dflt, params}, CRC32-footed like every other BLZ wire format.
func EncodeMeta(m Meta) []byte {
	eb := chunkenc.NewEncBuf(128 + len(m.Dflt))
	eb.PutBytes(metaMagic[:])
	eb.PutBE32(metaVersion)
	eb.PutBE32(0) // flags, reserved

	dtypeBytes := m.Dtype.MarshalBinary()
	eb.PutUvarint(len(dtypeBytes))
	eb.PutBytes(dtypeBytes)

	eb.PutUvarint64(uint64(m.Chunklen))
	eb.PutUvarint64(uint64(m.Len))

	itemsize := m.Dtype.ItemSize()
	eb.PutUvarint(itemsize)
	eb.PutBytes(m.Dflt)

	eb.PutByte(byte(m.Params.Clevel))
	if m.Params.Shuffle {
		eb.PutByte(1)
	} else {
		eb.PutByte(0)
	}
	eb.PutUvarint(len(m.Params.Cname))
	eb.PutBytes([]byte(m.Params.Cname))

	eb.PutHash(chunkenc.NewCRC32())
	return eb.Get()
}

// DecodeMeta parses a `meta` file written by EncodeMeta, validating its
// CRC32 footer. Any mismatch is a blzerr.CorruptedDataError (spec.md §7).
func DecodeMeta(b []byte) (Meta, error) {
	if len(b) < 4+4+4+4 {
		return Meta{}, blzerr.WrapCorrupted(nil, "meta file too short (%d bytes)", len(b))
	}
	body, footer := b[:len(b)-4], b[len(b)-4:]
	h := chunkenc.NewCRC32()
	_, _ = h.Write(body)
	want := h.Sum32()
	got := uint32(footer[0])<<24 | uint32(footer[1])<<16 | uint32(footer[2])<<8 | uint32(footer[3])
	if want != got {
		return Meta{}, blzerr.WrapCorrupted(nil, "meta checksum mismatch")
	}

	db := chunkenc.NewDecBuf(body)
	magic := db.Bytes(4)
	if db.Err() == nil && (magic[0] != 'B' || magic[1] != 'L' || magic[2] != 'Z' || magic[3] != 0) {
		return Meta{}, blzerr.WrapCorrupted(nil, "bad meta magic")
	}
	version := db.BE32()
	if db.Err() == nil && version != metaVersion {
		return Meta{}, blzerr.WrapCorrupted(nil, "unsupported meta version %d", version)
	}
	_ = db.BE32() // flags, reserved

	dtypeLen := db.Uvarint()
	dtypeBytes := db.Bytes(dtypeLen)
	if err := db.Err(); err != nil {
		return Meta{}, blzerr.WrapCorrupted(err, "decoding meta header")
	}
	dtype, _, err := atom.UnmarshalAtom(dtypeBytes)
	if err != nil {
		return Meta{}, blzerr.WrapCorrupted(err, "decoding dtype")
	}

	chunklen := db.Uvarint()
	length := db.Uvarint()
	itemsize := db.Uvarint()
	dflt := append([]byte(nil), db.Bytes(itemsize)...)

	clevel := int(db.Byte())
	shuffleByte := db.Byte()
	cnameLen := db.Uvarint()
	cname := string(db.Bytes(cnameLen))

	if err := db.Err(); err != nil {
		return Meta{}, blzerr.WrapCorrupted(err, "decoding meta fields")
	}

	return Meta{
		Dtype:    dtype,
		Chunklen: chunklen,
		Len:      length,
		Dflt:     dflt,
		Params: chunkenc.Params{
			Clevel:  clevel,
			Shuffle: shuffleByte != 0,
			Cname:   cname,
		},
	}, nil
}
