package barray

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// resolveIndex applies Python-style negative wraparound and bounds checks
// (spec.md §4.4's indexing contract: "-len <= i < len").
func (a *BArray) resolveIndex(i int) (int, error) {
	if i < 0 {
		i += a.length
	}
	if i < 0 || i >= a.length {
		return 0, blzerr.NewIndexError("barray: index %d out of range [0,%d)", i, a.length)
	}
	return i, nil
}

// normalizeSlice clamps a (start,stop,step) triple to [0,length], Python
// slice style. Negative step is explicitly unsupported per spec.md §4.4.
func normalizeSlice(start, stop, step, length int) (int, int, int, error) {
	if step == 0 {
		return 0, 0, 0, blzerr.NewValueError("barray: slice step cannot be 0")
	}
	if step < 0 {
		return 0, 0, 0, blzerr.NewUnimplementedError("barray: negative step slicing not supported")
	}
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	if stop < 0 {
		stop = 0
	}
	if stop > length {
		stop = length
	}
	if stop < start {
		stop = start
	}
	return start, stop, step, nil
}

// readOneInto decodes exactly one atom at absolute index idx into out.
func (a *BArray) readOneInto(idx int, out []byte) error {
	fullLen := a.store.Len() * a.chunklen
	if idx < fullLen {
		ci := idx / a.chunklen
		off := idx % a.chunklen
		c, err := a.store.Read(ci)
		if err != nil {
			return err
		}
		return c.GetOne(off, out)
	}
	li := idx - fullLen
	if li < 0 || li >= a.leftoverItems {
		return blzerr.NewIndexError("barray: index %d out of range [0,%d)", idx, a.length)
	}
	copy(out, a.leftover[li*a.itemsize:(li+1)*a.itemsize])
	return nil
}

// ReadDense decodes the half-open range [start,stop) into a fresh dense
// buffer, spanning however many chunks (plus leftover) the range touches.
// This is the method that makes *BArray satisfy pkg/eval.Array.
func (a *BArray) ReadDense(start, stop int) ([]byte, error) {
	if start < 0 || stop > a.length || stop < start {
		return nil, blzerr.NewIndexError("barray: ReadDense(%d,%d) out of range [0,%d]", start, stop, a.length)
	}
	out := make([]byte, (stop-start)*a.itemsize)
	fullLen := a.store.Len() * a.chunklen
	pos := start
	for pos < stop {
		if pos < fullLen {
			ci := pos / a.chunklen
			chunkStart := ci * a.chunklen
			chunkEnd := chunkStart + a.chunklen
			segStop := stop
			if segStop > chunkEnd {
				segStop = chunkEnd
			}
			if segStop > fullLen {
				segStop = fullLen
			}
			c, err := a.store.Read(ci)
			if err != nil {
				return nil, err
			}
			localStart := pos - chunkStart
			localStop := segStop - chunkStart
			seg := out[(pos-start)*a.itemsize : (segStop-start)*a.itemsize]
			if err := c.GetRange(localStart, localStop, 1, seg); err != nil {
				return nil, err
			}
			pos = segStop
		} else {
			li0 := pos - fullLen
			segStop := stop
			li1 := segStop - fullLen
			copy(out[(pos-start)*a.itemsize:(segStop-start)*a.itemsize], a.leftover[li0*a.itemsize:li1*a.itemsize])
			pos = segStop
		}
	}
	return out, nil
}

// sliceDense handles an arbitrary positive step, one atom at a time; used
// only off the ReadDense fast path (step==1).
func (a *BArray) sliceDense(start, stop, step int) ([]byte, error) {
	n := 0
	for i := start; i < stop; i += step {
		n++
	}
	out := make([]byte, n*a.itemsize)
	buf := make([]byte, a.itemsize)
	j := 0
	for i := start; i < stop; i += step {
		if err := a.readOneInto(i, buf); err != nil {
			return nil, err
		}
		copy(out[j*a.itemsize:(j+1)*a.itemsize], buf)
		j++
	}
	return out, nil
}

func (a *BArray) decodeAll(dense []byte) ([]atom.Scalar, error) {
	n := len(dense) / a.itemsize
	out := make([]atom.Scalar, n)
	for i := 0; i < n; i++ {
		v, err := a.dtype.Decode(dense[i*a.itemsize : (i+1)*a.itemsize])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Get returns the single atom at i (scalar access, spec.md §4.4).
func (a *BArray) Get(i int) (atom.Scalar, error) {
	idx, err := a.resolveIndex(i)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, a.itemsize)
	if err := a.readOneInto(idx, buf); err != nil {
		return nil, err
	}
	return a.dtype.Decode(buf)
}

// GetSlice returns a new owned buffer of scalars over [start,stop,step).
func (a *BArray) GetSlice(start, stop, step int) ([]atom.Scalar, error) {
	start, stop, step, err := normalizeSlice(start, stop, step, a.length)
	if err != nil {
		return nil, err
	}
	var dense []byte
	if step == 1 {
		dense, err = a.ReadDense(start, stop)
	} else {
		dense, err = a.sliceDense(start, stop, step)
	}
	if err != nil {
		return nil, err
	}
	return a.decodeAll(dense)
}

// GetFancy returns a new buffer selecting indices in order (fancy
// indexing, spec.md §4.4).
func (a *BArray) GetFancy(indices []int) ([]atom.Scalar, error) {
	out := make([]atom.Scalar, len(indices))
	buf := make([]byte, a.itemsize)
	for j, i := range indices {
		idx, err := a.resolveIndex(i)
		if err != nil {
			return nil, err
		}
		if err := a.readOneInto(idx, buf); err != nil {
			return nil, err
		}
		v, err := a.dtype.Decode(buf)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

// GetBoolMask returns the values where mask is true, index-sorted (which
// the ascending scan already guarantees).
func (a *BArray) GetBoolMask(mask []bool) ([]atom.Scalar, error) {
	if len(mask) != a.length {
		return nil, blzerr.NewValueError("barray: bool mask length %d != array length %d", len(mask), a.length)
	}
	var out []atom.Scalar
	buf := make([]byte, a.itemsize)
	for i, t := range mask {
		if !t {
			continue
		}
		if err := a.readOneInto(i, buf); err != nil {
			return nil, err
		}
		v, err := a.dtype.Decode(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
