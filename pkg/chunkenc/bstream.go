package chunkenc

import (
	"encoding/binary"
	"hash"
	"hash/crc32"

	"github.com/pkg/errors"
)

// CastagnoliTable is shared across all checksum sites (chunk container and
// meta file; the leftover file carries no checksum) as memchunk.go shares one package-level
// castagnoliTable to avoid sync.Once races across concurrent first-uses.
var CastagnoliTable *crc32.Table

func init() {
	CastagnoliTable = crc32.MakeTable(crc32.Castagnoli)
}

// NewCRC32 returns a hash preconfigured with CastagnoliTable.
func NewCRC32() hash.Hash32 { return crc32.New(CastagnoliTable) }

// EncBuf is an append-only binary cursor, the generalization of
// memchunk.go's (unexported, not present in the retrieved pack) `encbuf`
// helper used by Bytes() to lay out the chunk header/footer. BLZ exports
// it so pkg/persist's meta/leftover encoders can reuse the identical
// cursor instead of re-deriving one.
type EncBuf struct {
	b []byte
}

// NewEncBuf returns an EncBuf with the given initial capacity.
func NewEncBuf(cap int) *EncBuf { return &EncBuf{b: make([]byte, 0, cap)} }

func (e *EncBuf) Reset()          { e.b = e.b[:0] }
func (e *EncBuf) Get() []byte     { return e.b }
func (e *EncBuf) Len() int        { return len(e.b) }

func (e *EncBuf) PutByte(b byte) { e.b = append(e.b, b) }

func (e *EncBuf) PutBytes(b []byte) { e.b = append(e.b, b...) }

func (e *EncBuf) PutBE32(v uint32) {
	e.b = append(e.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (e *EncBuf) PutBE64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *EncBuf) PutBE64Int(v int) { e.PutBE64(uint64(v)) }

func (e *EncBuf) PutUvarint64(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.b = append(e.b, tmp[:n]...)
}

func (e *EncBuf) PutUvarint(v int) { e.PutUvarint64(uint64(v)) }

func (e *EncBuf) PutVarint64(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	e.b = append(e.b, tmp[:n]...)
}

// PutHash appends the CRC32 of everything written so far.
func (e *EncBuf) PutHash(h hash.Hash32) {
	h.Reset()
	_, _ = h.Write(e.b)
	e.PutBE32(h.Sum32())
}

// DecBuf is the read-side cursor counterpart to EncBuf.
type DecBuf struct {
	b   []byte
	e   error
}

// NewDecBuf wraps b for sequential decoding.
func NewDecBuf(b []byte) *DecBuf { return &DecBuf{b: b} }

func (d *DecBuf) Err() error { return d.e }

func (d *DecBuf) setErr(err error) {
	if d.e == nil {
		d.e = err
	}
}

func (d *DecBuf) Byte() byte {
	if len(d.b) < 1 {
		d.setErr(errors.New("decbuf: unexpected end of buffer"))
		return 0
	}
	b := d.b[0]
	d.b = d.b[1:]
	return b
}

func (d *DecBuf) Bytes(n int) []byte {
	if len(d.b) < n {
		d.setErr(errors.New("decbuf: unexpected end of buffer"))
		return nil
	}
	out := d.b[:n]
	d.b = d.b[n:]
	return out
}

func (d *DecBuf) BE32() uint32 {
	if len(d.b) < 4 {
		d.setErr(errors.New("decbuf: unexpected end of buffer"))
		return 0
	}
	v := uint32(d.b[0])<<24 | uint32(d.b[1])<<16 | uint32(d.b[2])<<8 | uint32(d.b[3])
	d.b = d.b[4:]
	return v
}

func (d *DecBuf) BE64() uint64 {
	if len(d.b) < 8 {
		d.setErr(errors.New("decbuf: unexpected end of buffer"))
		return 0
	}
	v := binary.BigEndian.Uint64(d.b[:8])
	d.b = d.b[8:]
	return v
}

func (d *DecBuf) Uvarint() int {
	v, n := binary.Uvarint(d.b)
	if n <= 0 {
		d.setErr(errors.New("decbuf: invalid uvarint"))
		return 0
	}
	d.b = d.b[n:]
	return int(v)
}

func (d *DecBuf) Varint64() int64 {
	v, n := binary.Varint(d.b)
	if n <= 0 {
		d.setErr(errors.New("decbuf: invalid varint"))
		return 0
	}
	d.b = d.b[n:]
	return v
}

// CRC32 returns the Castagnoli CRC32 of prefix. It compares nothing itself:
// callers pass the exact prefix that was hashed on encode and compare the
// result with the stored footer.
func (d *DecBuf) CRC32(prefix []byte) uint32 {
	h := NewCRC32()
	_, _ = h.Write(prefix)
	return h.Sum32()
}

func (d *DecBuf) Remaining() []byte { return d.b }
