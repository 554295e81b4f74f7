// Chunk is the compressed-block primitive (spec.md §4.2 / C2), the direct
// generalization of memchunk.go's block cutting/serialization/checksum
// machinery from "a run of timestamped log lines" to "a run of fixed-width
// atoms."
package chunkenc

import (
	"bytes"
	"io"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

const chunkMagic = uint32(0xB17C0DE)
const chunkFormatV1 = byte(1)

const (
	flagConstant = 1 << iota
	flagRawStored
	flagShuffled
)

// decodedCache holds the last few full decompressions of hot chunks, the
// concrete mechanism behind spec.md §4.2's "When the codec supports
// block-level random access it is used; otherwise full decompression is
// acceptable for chunks at the default chunklen."
var decodedCache, _ = lru.New(32)

// Chunk is a single compressed block of nitems atoms of atomSize bytes
// each, or a constant-run descriptor (spec.md §3 "Constant chunk").
type Chunk struct {
	atomSize int
	nitems   int
	params   Params

	constant bool
	constVal []byte // atomSize bytes, only set when constant

	payload   []byte // compressed (or raw, if rawStored) bytes
	rawStored bool
	shuffled  bool
}

// New builds a Chunk from a dense buffer of nitems*atomSize bytes,
// applying spec.md §4.2's algorithm: constant-run detection first, then
// optional shuffle + codec compression, falling back to raw storage when
// compression doesn't help or clevel==0.
func New(atomSize int, dense []byte, nitems int, dfltEncoded []byte, params Params) (*Chunk, error) {
	if nitems < 1 {
		return nil, blzerr.NewValueError("chunk nitems must be >= 1, got %d", nitems)
	}
	if len(dense) != nitems*atomSize {
		return nil, blzerr.NewValueError("chunk buffer length %d != nitems*atomSize (%d*%d)", len(dense), nitems, atomSize)
	}

	c := &Chunk{atomSize: atomSize, nitems: nitems, params: params}

	if allEqualBytes(dense, atomSize, dfltEncoded) {
		c.constant = true
		c.constVal = append([]byte(nil), dfltEncoded...)
		return c, nil
	}

	if params.Clevel == 0 {
		c.payload = append([]byte(nil), dense...)
		c.rawStored = true
		return c, nil
	}

	shuffle := params.EffectiveShuffle(atomSize)
	src := dense
	if shuffle {
		src = atom.Shuffle(atomSize, dense)
	}

	wp, err := getWriterPool(params.Cname)
	if err != nil {
		return nil, err
	}
	codecCalls.WithLabelValues("compress", params.Cname).Inc()
	var outBuf bytes.Buffer
	w := wp.GetWriter(&outBuf, params.Clevel)
	if _, err := w.Write(src); err != nil {
		wp.PutWriter(w)
		return nil, blzerr.WrapIO(err, "compressing chunk")
	}
	if err := w.Close(); err != nil {
		return nil, blzerr.WrapIO(err, "flushing compressor")
	}
	wp.PutWriter(w)

	if outBuf.Len() >= len(dense) {
		c.payload = append([]byte(nil), dense...)
		c.rawStored = true
		c.shuffled = false
		return c, nil
	}
	c.payload = outBuf.Bytes()
	c.rawStored = false
	c.shuffled = shuffle
	return c, nil
}

// NItems is the number of atoms in the chunk.
func (c *Chunk) NItems() int { return c.nitems }

// NBytes is nitems*itemsize, the decompressed size.
func (c *Chunk) NBytes() int { return c.nitems * c.atomSize }

// CBytes is the bytes actually occupied on-heap/on-disk by this chunk's
// payload (spec.md §3: "cbytes = itemsize" for a constant chunk).
func (c *Chunk) CBytes() int {
	if c.constant {
		return c.atomSize
	}
	return len(c.payload)
}

// Constant reports whether this is a constant-run chunk.
func (c *Chunk) Constant() bool { return c.constant }

// DecompressInto expands the chunk's full payload into out, which must be
// exactly NBytes() long.
func (c *Chunk) DecompressInto(out []byte) error {
	if len(out) != c.NBytes() {
		return blzerr.NewValueError("DecompressInto: out has length %d, want %d", len(out), c.NBytes())
	}
	if c.constant {
		return fillBytes(out, c.constVal, c.atomSize)
	}
	if cached, ok := decodedCache.Get(c); ok {
		decodeCacheHits.Inc()
		copy(out, cached.([]byte))
		return nil
	}
	decodeCacheMisses.Inc()
	if c.rawStored {
		copy(out, c.payload)
		decodedCache.Add(c, append([]byte(nil), out...))
		return nil
	}

	rp, err := getReaderPool(c.params.Cname)
	if err != nil {
		return err
	}
	codecCalls.WithLabelValues("decompress", c.params.Cname).Inc()
	r, err := rp.GetReader(bytes.NewReader(c.payload))
	if err != nil {
		return blzerr.WrapCorrupted(err, "opening chunk reader")
	}
	defer rp.PutReader(r)

	dst := out
	if c.shuffled {
		dst = make([]byte, len(out))
	}
	if _, err := io.ReadFull(r, dst); err != nil {
		return blzerr.WrapCorrupted(err, "decompressing chunk (nitems=%d itemsize=%d)", c.nitems, c.atomSize)
	}
	if c.shuffled {
		copy(out, atom.Unshuffle(c.atomSize, dst))
	}
	decodedCache.Add(c, append([]byte(nil), out...))
	return nil
}

// GetOne decodes exactly atom i's bytes into out (len(out) == atomSize).
func (c *Chunk) GetOne(i int, out []byte) error {
	if i < 0 || i >= c.nitems {
		return blzerr.NewIndexError("chunk index %d out of range [0,%d)", i, c.nitems)
	}
	if c.constant {
		copy(out, c.constVal)
		return nil
	}
	full := make([]byte, c.NBytes())
	if err := c.DecompressInto(full); err != nil {
		return err
	}
	copy(out, full[i*c.atomSize:(i+1)*c.atomSize])
	return nil
}

// GetRange decodes the half-open strided range [start,stop) with the given
// step into out, which must be exactly len([start:stop:step])*atomSize
// bytes. For constant chunks this is a fill, never touching a payload.
func (c *Chunk) GetRange(start, stop, step int, out []byte) error {
	if step <= 0 {
		return blzerr.NewUnimplementedError("GetRange: step must be positive, got %d", step)
	}
	n := 0
	for i := start; i < stop; i += step {
		n++
	}
	if len(out) != n*c.atomSize {
		return blzerr.NewValueError("GetRange: out has length %d, want %d", len(out), n*c.atomSize)
	}
	if c.constant {
		return fillBytes(out, c.constVal, c.atomSize)
	}
	full := make([]byte, c.NBytes())
	if err := c.DecompressInto(full); err != nil {
		return err
	}
	j := 0
	for i := start; i < stop; i += step {
		copy(out[j*c.atomSize:(j+1)*c.atomSize], full[i*c.atomSize:(i+1)*c.atomSize])
		j++
	}
	return nil
}

// Serialize writes the chunk's on-disk representation: a small header
// (magic, format, flags, cname, nitems, atomSize) plus payload and a
// trailing CRC32 footer — the same magic+version+footer shape as
// memchunk.go's Bytes(), generalized from "compressed blocks of a chunk"
// to "one compressed chunk."
func (c *Chunk) Serialize() []byte {
	eb := NewEncBuf(64 + len(c.payload))
	eb.PutBE32(chunkMagic)
	eb.PutByte(chunkFormatV1)

	var flags byte
	if c.constant {
		flags |= flagConstant
	}
	if c.rawStored {
		flags |= flagRawStored
	}
	if c.shuffled {
		flags |= flagShuffled
	}
	eb.PutByte(flags)

	eb.PutUvarint(len(c.params.Cname))
	eb.PutBytes([]byte(c.params.Cname))
	eb.PutUvarint(c.nitems)
	eb.PutUvarint(c.atomSize)

	if c.constant {
		eb.PutBytes(c.constVal)
	} else {
		eb.PutUvarint(len(c.payload))
		eb.PutBytes(c.payload)
	}

	h := NewCRC32()
	eb.PutHash(h)
	return eb.Get()
}

// Deserialize parses a chunk serialized by Serialize, validating its CRC32
// footer. A checksum mismatch or short buffer surfaces as a
// blzerr.CorruptedDataError, per spec.md §7.
func Deserialize(b []byte) (*Chunk, error) {
	if len(b) < 9 {
		return nil, blzerr.WrapCorrupted(nil, "chunk payload too short (%d bytes)", len(b))
	}
	body, footer := b[:len(b)-4], b[len(b)-4:]
	h := NewCRC32()
	_, _ = h.Write(body)
	want := h.Sum32()
	got := uint32(footer[0])<<24 | uint32(footer[1])<<16 | uint32(footer[2])<<8 | uint32(footer[3])
	if want != got {
		return nil, blzerr.WrapCorrupted(nil, "chunk checksum mismatch")
	}

	db := NewDecBuf(body)
	magic := db.BE32()
	if magic != chunkMagic {
		return nil, blzerr.WrapCorrupted(nil, "bad chunk magic %x", magic)
	}
	format := db.Byte()
	if format != chunkFormatV1 {
		return nil, blzerr.WrapCorrupted(nil, "unsupported chunk format %d", format)
	}
	flags := db.Byte()
	cnameLen := db.Uvarint()
	cname := string(db.Bytes(cnameLen))
	nitems := db.Uvarint()
	atomSize := db.Uvarint()

	c := &Chunk{
		atomSize: atomSize,
		nitems:   nitems,
		params:   Params{Cname: cname},
		constant: flags&flagConstant != 0,
		rawStored: flags&flagRawStored != 0,
		shuffled: flags&flagShuffled != 0,
	}

	if c.constant {
		c.constVal = append([]byte(nil), db.Bytes(atomSize)...)
	} else {
		n := db.Uvarint()
		c.payload = append([]byte(nil), db.Bytes(n)...)
	}
	if err := db.Err(); err != nil {
		return nil, blzerr.WrapCorrupted(err, "decoding chunk header")
	}
	return c, nil
}

func allEqualBytes(buf []byte, itemsize int, want []byte) bool {
	if itemsize == 0 || len(buf)%itemsize != 0 || len(want) != itemsize {
		return false
	}
	for off := 0; off < len(buf); off += itemsize {
		for i := 0; i < itemsize; i++ {
			if buf[off+i] != want[i] {
				return false
			}
		}
	}
	return true
}

func fillBytes(out []byte, item []byte, itemsize int) error {
	if itemsize == 0 {
		return nil
	}
	for off := 0; off+itemsize <= len(out); off += itemsize {
		copy(out[off:off+itemsize], item)
	}
	return nil
}
