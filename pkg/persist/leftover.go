package persist

import (
	"encoding/binary"

	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// EncodeLeftover serializes the tail buffer as spec.md §6 documents:
// {nitems:u32} then nitems*itemsize raw bytes. No checksum — the leftover
// is re-derived wholesale on every flush, so a partial write is simply
// truncated rather than corrupt-in-place.
func EncodeLeftover(nitems int, payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(nitems))
	copy(out[4:], payload)
	return out
}

// DecodeLeftover parses a leftover file given the atom's itemsize.
func DecodeLeftover(b []byte, itemsize int) (nitems int, payload []byte, err error) {
	if len(b) < 4 {
		return 0, nil, blzerr.WrapCorrupted(nil, "leftover file too short (%d bytes)", len(b))
	}
	n := int(binary.LittleEndian.Uint32(b))
	want := 4 + n*itemsize
	if len(b) != want {
		return 0, nil, blzerr.WrapCorrupted(nil, "leftover file size %d, want %d (nitems=%d itemsize=%d)", len(b), want, n, itemsize)
	}
	return n, append([]byte(nil), b[4:]...), nil
}
