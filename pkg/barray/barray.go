package barray

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
	"github.com/ContinuumIO/blz/pkg/chunkstore"
	"github.com/ContinuumIO/blz/pkg/persist"
)

// BArray is a single compressed, chunked, homogeneous-dtype sequence
// (spec.md §3/§4.4), the unit both Zeros/Ones/Fill/Arange/FromIter/New
// build and BTable composes columns out of.
type BArray struct {
	dtype      atom.Atom
	itemsize   int
	chunklen   int
	dfltBytes  []byte
	dfltScalar atom.Scalar
	params     chunkenc.Params

	store chunkstore.Store

	leftover      []byte
	leftoverItems int

	length int

	mode    string // "", "r", "w", or "a" ("" == pure in-memory, always writable)
	rootdir string
	attrs   *persist.Attrs

	dirty bool
}

// Len is the array's logical element count.
func (a *BArray) Len() int { return a.length }

// Chunklen is the number of atoms stored per full chunk.
func (a *BArray) Chunklen() int { return a.chunklen }

// Dtype is the array's atom type.
func (a *BArray) Dtype() atom.Atom { return a.dtype }

// Params returns the codec parameters new chunks are encoded with.
func (a *BArray) Params() chunkenc.Params { return a.params }

// Mode reports "r", "w", "a", or "" (pure in-memory, unrestricted).
func (a *BArray) Mode() string { return a.mode }

// Rootdir is the backing directory, or "" for a memory-only array.
func (a *BArray) Rootdir() string { return a.rootdir }

// Dirty reports whether mutations are unflushed (always false for a
// memory-only array, since there's nothing to persist).
func (a *BArray) Dirty() bool { return a.rootdir != "" && a.dirty }

// NBytes is the logical (decompressed) size in bytes.
func (a *BArray) NBytes() int64 { return int64(a.length) * int64(a.itemsize) }

// CBytes is the actual compressed footprint: the sum of each chunk's
// CBytes() (itemsize, for a constant chunk) plus the raw leftover buffer.
func (a *BArray) CBytes() int64 {
	var total int64
	for i := 0; i < a.store.Len(); i++ {
		c, err := a.store.Read(i)
		if err != nil {
			continue
		}
		total += int64(c.CBytes())
	}
	return total + int64(len(a.leftover))
}

func newShell(dtype atom.Atom, opts Options) (*BArray, error) {
	itemsize := dtype.ItemSize()
	if itemsize <= 0 {
		return nil, blzerr.NewValueError("barray: dtype %s has zero itemsize", dtype.Kind)
	}
	chunklen := opts.Chunklen
	if chunklen <= 0 {
		chunklen = DefaultChunklen(itemsize)
	}
	params, err := chunkenc.NewParams(opts.Params)
	if err != nil {
		return nil, err
	}
	dflt := opts.Dflt
	if dflt == nil {
		dflt = dtype.Zero()
	}
	dfltBytes := make([]byte, itemsize)
	if err := dtype.Encode(dflt, dfltBytes); err != nil {
		return nil, blzerr.NewDtypeError("barray: invalid default value: %v", err)
	}

	a := &BArray{
		dtype:      dtype,
		itemsize:   itemsize,
		chunklen:   chunklen,
		dfltBytes:  dfltBytes,
		dfltScalar: dflt,
		params:     params,
	}

	if opts.Rootdir == "" {
		a.store = chunkstore.NewMemoryStore()
		return a, nil
	}

	if err := os.RemoveAll(opts.Rootdir); err != nil && !os.IsNotExist(err) {
		return nil, blzerr.WrapIO(err, "clearing rootdir %s", opts.Rootdir)
	}
	if err := os.MkdirAll(opts.Rootdir, 0o755); err != nil {
		return nil, blzerr.WrapIO(err, "creating rootdir %s", opts.Rootdir)
	}
	store, err := chunkstore.OpenDisk(filepath.Join(opts.Rootdir, "data"), "w", 0)
	if err != nil {
		return nil, err
	}
	attrs, err := persist.OpenAttrs(filepath.Join(opts.Rootdir, "__attrs__"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.store = store
	a.attrs = attrs
	a.mode = "w"
	a.rootdir = opts.Rootdir
	return a, nil
}

// AppendDense copies a dense buffer of whole atoms into the leftover
// buffer until full, compressing a new chunk each time it reaches
// chunklen and resetting it — spec.md §4.4's Append algorithm, amortized
// O(1) per atom plus one codec call per chunklen atoms.
func (a *BArray) AppendDense(buf []byte) error {
	if a.mode == "r" {
		return blzerr.NewReadOnlyError("barray: append on read-only array")
	}
	if a.itemsize == 0 || len(buf)%a.itemsize != 0 {
		return blzerr.NewValueError("barray: append buffer length %d not a multiple of itemsize %d", len(buf), a.itemsize)
	}
	n := len(buf) / a.itemsize
	pos := 0
	for pos < n {
		room := a.chunklen - a.leftoverItems
		take := n - pos
		if take > room {
			take = room
		}
		start := pos * a.itemsize
		end := (pos + take) * a.itemsize
		a.leftover = append(a.leftover, buf[start:end]...)
		a.leftoverItems += take
		pos += take

		if a.leftoverItems == a.chunklen {
			c, err := chunkenc.New(a.itemsize, a.leftover, a.leftoverItems, a.dfltBytes, a.params)
			if err != nil {
				return err
			}
			if err := a.store.Append(c); err != nil {
				return err
			}
			a.leftover = a.leftover[:0]
			a.leftoverItems = 0
		}
	}
	a.length += n
	a.dirty = true
	return nil
}

// Append encodes values and appends them, the typed counterpart of
// AppendDense.
func (a *BArray) Append(values ...atom.Scalar) error {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, len(values)*a.itemsize)
	for i, v := range values {
		if err := a.dtype.Encode(v, buf[i*a.itemsize:(i+1)*a.itemsize]); err != nil {
			return blzerr.NewDtypeError("barray: append: %v", err)
		}
	}
	return a.AppendDense(buf)
}

func (a *BArray) appendDefaultN(n int) error {
	remaining := n
	for remaining > 0 {
		batch := remaining
		if batch > a.chunklen {
			batch = a.chunklen
		}
		buf := make([]byte, batch*a.itemsize)
		if err := a.dtype.Fill(buf, a.dfltScalar, batch); err != nil {
			return err
		}
		if err := a.AppendDense(buf); err != nil {
			return err
		}
		remaining -= batch
	}
	return nil
}

// Flush persists the leftover buffer and rewrites the meta file
// atomically (temp+rename via google/renameio), the concrete mechanism
// behind spec.md §4.7's flush() contract. A no-op for memory-only arrays.
func (a *BArray) Flush() error {
	if a.rootdir == "" {
		return nil
	}
	if a.mode == "r" {
		return nil
	}
	if err := a.store.Flush(); err != nil {
		return err
	}
	leftoverBytes := persist.EncodeLeftover(a.leftoverItems, a.leftover)
	if err := renameio.WriteFile(filepath.Join(a.rootdir, "leftover"), leftoverBytes, 0o644); err != nil {
		return blzerr.WrapIO(err, "flushing leftover file")
	}
	m := persist.Meta{Dtype: a.dtype, Chunklen: a.chunklen, Len: a.length, Dflt: a.dfltBytes, Params: a.params}
	if err := renameio.WriteFile(filepath.Join(a.rootdir, "meta"), persist.EncodeMeta(m), 0o644); err != nil {
		return blzerr.WrapIO(err, "flushing meta file")
	}
	a.dirty = false
	return nil
}

// Close flushes (if rooted) and releases the backing store/attrs.
func (a *BArray) Close() error {
	if a.rootdir != "" {
		if err := a.Flush(); err != nil {
			return err
		}
	}
	if a.attrs != nil {
		if err := a.attrs.Close(); err != nil {
			return err
		}
	}
	return a.store.Close()
}
