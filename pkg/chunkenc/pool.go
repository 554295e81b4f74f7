package chunkenc

import (
	"bufio"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	lz4 "github.com/pierrec/lz4/v4"

	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// CompressorList returns the cnames BLZ's Params.Validate accepts, the
// generalization of blosc_compressor_list() that original_source/blz
// validates bparams.cname against.
func CompressorList() []string {
	return []string{"store", "flate", "zlib", "snappy", "lz4"}
}

// WriterPool mirrors memchunk.go's WriterPool: GetWriter/PutWriter hand out
// pooled compressing writers so a chunk cut doesn't allocate one per call.
type WriterPool interface {
	GetWriter(w io.Writer, level int) io.WriteCloser
	PutWriter(wr io.WriteCloser)
}

// ReaderPool is the decompression-side analog of WriterPool.
type ReaderPool interface {
	GetReader(r io.Reader) (io.Reader, error)
	PutReader(r io.Reader)
}

// getWriterPool resolves a cname to its WriterPool, the chunkenc analog of
// memchunk.go's getWriterPool(enc Encoding).
func getWriterPool(cname string) (WriterPool, error) {
	switch cname {
	case "store":
		return storePool{}, nil
	case "flate":
		return flatePool, nil
	case "zlib":
		return zlibPool, nil
	case "snappy":
		return snappyPool{}, nil
	case "lz4":
		return lz4Pool, nil
	default:
		return nil, blzerr.NewValueError("unknown compressor %q", cname)
	}
}

func getReaderPool(cname string) (ReaderPool, error) {
	switch cname {
	case "store":
		return storePool{}, nil
	case "flate":
		return flatePool, nil
	case "zlib":
		return zlibPool, nil
	case "snappy":
		return snappyPool{}, nil
	case "lz4":
		return lz4Pool, nil
	default:
		return nil, blzerr.NewValueError("unknown compressor %q", cname)
	}
}

// --- store: passthrough, used for clevel==0 or incompressible chunks ---

type storePool struct{}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (storePool) GetWriter(w io.Writer, _ int) io.WriteCloser { return nopWriteCloser{w} }
func (storePool) PutWriter(io.WriteCloser)                    {}
func (storePool) GetReader(r io.Reader) (io.Reader, error)     { return r, nil }
func (storePool) PutReader(io.Reader)                         {}

// --- flate ---

type flateWriterPool struct{ pools [10]sync.Pool }

var flatePool = &flateWriterPool{}

func (p *flateWriterPool) GetWriter(w io.Writer, level int) io.WriteCloser {
	level = clampLevel(level)
	if v := p.pools[level].Get(); v != nil {
		fw := v.(*flate.Writer)
		fw.Reset(w)
		return fw
	}
	fw, _ := flate.NewWriter(w, level)
	return fw
}

func (p *flateWriterPool) PutWriter(wr io.WriteCloser) {
	fw, ok := wr.(*flate.Writer)
	if !ok {
		return
	}
	// Level isn't recoverable from *flate.Writer; pool it under level 0's
	// bucket since Reset() re-targets the writer regardless of bucket.
	p.pools[0].Put(fw)
}

var flateReaderPool sync.Pool

func (p *flateWriterPool) GetReader(r io.Reader) (io.Reader, error) {
	if v := flateReaderPool.Get(); v != nil {
		fr := v.(flate.Resetter)
		if err := fr.Reset(r, nil); err != nil {
			return nil, blzerr.WrapCorrupted(err, "resetting flate reader")
		}
		return fr.(io.Reader), nil
	}
	return flate.NewReader(r), nil
}

func (p *flateWriterPool) PutReader(r io.Reader) {
	if rc, ok := r.(io.Closer); ok {
		_ = rc.Close()
	}
	flateReaderPool.Put(r)
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return level
}

// --- zlib ---

type zlibWriterPool struct{ pools [10]sync.Pool }

var zlibPool = &zlibWriterPool{}

// zlibLevelWriter remembers the level a pooled *zlib.Writer was built with
// (Reset keeps it), so it goes back to that level's bucket.
type zlibLevelWriter struct {
	*zlib.Writer
	level int
}

func (p *zlibWriterPool) GetWriter(w io.Writer, level int) io.WriteCloser {
	level = clampLevel(level)
	if v := p.pools[level].Get(); v != nil {
		zw := v.(*zlibLevelWriter)
		zw.Reset(w)
		return zw
	}
	zw, _ := zlib.NewWriterLevel(w, level)
	return &zlibLevelWriter{Writer: zw, level: level}
}

func (p *zlibWriterPool) PutWriter(wr io.WriteCloser) {
	if zw, ok := wr.(*zlibLevelWriter); ok {
		p.pools[zw.level].Put(zw)
	}
}

func (p *zlibWriterPool) GetReader(r io.Reader) (io.Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, blzerr.WrapCorrupted(err, "opening zlib reader")
	}
	return zr, nil
}

func (p *zlibWriterPool) PutReader(r io.Reader) {
	if zr, ok := r.(io.Closer); ok {
		_ = zr.Close()
	}
}

// --- snappy ---

type snappyPool struct{}

func (snappyPool) GetWriter(w io.Writer, _ int) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}
func (snappyPool) PutWriter(wr io.WriteCloser) { _ = wr.Close() }

func (snappyPool) GetReader(r io.Reader) (io.Reader, error) {
	return snappy.NewReader(r), nil
}
func (snappyPool) PutReader(io.Reader) {}

// --- lz4 ---

type lz4WriterPool struct{ pool sync.Pool }

var lz4Pool = &lz4WriterPool{}

func (p *lz4WriterPool) GetWriter(w io.Writer, _ int) io.WriteCloser {
	if v := p.pool.Get(); v != nil {
		lw := v.(*lz4.Writer)
		lw.Reset(w)
		return lw
	}
	return lz4.NewWriter(w)
}

func (p *lz4WriterPool) PutWriter(wr io.WriteCloser) {
	if lw, ok := wr.(*lz4.Writer); ok {
		p.pool.Put(lw)
	}
}

func (p *lz4WriterPool) GetReader(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}
func (p *lz4WriterPool) PutReader(io.Reader) {}

// BufReaderPool mirrors memchunk.go's BufReaderPool: bufio.Reader reuse
// around a freshly-obtained decompressing reader.
var BufReaderPool = bufReaderPool{}

type bufReaderPool struct{ pool sync.Pool }

func (p *bufReaderPool) Get(r io.Reader) *bufio.Reader {
	if v := p.pool.Get(); v != nil {
		br := v.(*bufio.Reader)
		br.Reset(r)
		return br
	}
	return bufio.NewReaderSize(r, 4096)
}

func (p *bufReaderPool) Put(br *bufio.Reader) {
	br.Reset(nil)
	p.pool.Put(br)
}
