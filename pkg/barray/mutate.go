package barray

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

// writeAtoms is the shared engine behind every assignment form: group the
// touched absolute positions by owning chunk, decompress each touched
// chunk exactly once, overwrite, re-encode, swap — spec.md §4.4's
// assignment algorithm, generalized across scalar/slice/fancy/bool forms.
func (a *BArray) writeAtoms(positions []int, values [][]byte) error {
	if a.mode == "r" {
		return blzerr.NewReadOnlyError("barray: assignment on read-only array")
	}
	if len(positions) != len(values) {
		return blzerr.NewValueError("barray: assignment: %d positions, %d values", len(positions), len(values))
	}
	if len(positions) == 0 {
		return nil
	}
	fullLen := a.store.Len() * a.chunklen
	byChunk := map[int][]int{}
	var leftoverIdxs []int
	for j, pos := range positions {
		if pos < 0 || pos >= a.length {
			return blzerr.NewIndexError("barray: assignment index %d out of range [0,%d)", pos, a.length)
		}
		if pos < fullLen {
			ci := pos / a.chunklen
			byChunk[ci] = append(byChunk[ci], j)
		} else {
			leftoverIdxs = append(leftoverIdxs, j)
		}
	}
	for ci, js := range byChunk {
		c, err := a.store.Read(ci)
		if err != nil {
			return err
		}
		dense := make([]byte, c.NBytes())
		if err := c.DecompressInto(dense); err != nil {
			return err
		}
		chunkStart := ci * a.chunklen
		for _, j := range js {
			off := (positions[j] - chunkStart) * a.itemsize
			copy(dense[off:off+a.itemsize], values[j])
		}
		nc, err := chunkenc.New(a.itemsize, dense, c.NItems(), a.dfltBytes, a.params)
		if err != nil {
			return err
		}
		if err := a.store.Replace(ci, nc); err != nil {
			return err
		}
	}
	for _, j := range leftoverIdxs {
		li := positions[j] - fullLen
		off := li * a.itemsize
		copy(a.leftover[off:off+a.itemsize], values[j])
	}
	a.dirty = true
	return nil
}

func (a *BArray) encodeOne(v atom.Scalar) ([]byte, error) {
	buf := make([]byte, a.itemsize)
	if err := a.dtype.Encode(v, buf); err != nil {
		return nil, blzerr.NewDtypeError("barray: assignment: %v", err)
	}
	return buf, nil
}

func (a *BArray) setByPositions(positions []int, values []atom.Scalar) error {
	var vals [][]byte
	switch {
	case len(values) == 1:
		buf, err := a.encodeOne(values[0])
		if err != nil {
			return err
		}
		vals = make([][]byte, len(positions))
		for i := range vals {
			vals[i] = buf
		}
	case len(values) == len(positions):
		vals = make([][]byte, len(values))
		for i, v := range values {
			buf, err := a.encodeOne(v)
			if err != nil {
				return err
			}
			vals[i] = buf
		}
	default:
		return blzerr.NewValueError("barray: assignment: %d values for %d positions", len(values), len(positions))
	}
	return a.writeAtoms(positions, vals)
}

// SetItem replaces the atom at i (scalar assignment).
func (a *BArray) SetItem(i int, v atom.Scalar) error {
	idx, err := a.resolveIndex(i)
	if err != nil {
		return err
	}
	buf, err := a.encodeOne(v)
	if err != nil {
		return err
	}
	return a.writeAtoms([]int{idx}, [][]byte{buf})
}

// SetSlice overwrites [start,stop,step); values may be length 1 (broadcast
// scalar) or exactly as long as the resolved index set.
func (a *BArray) SetSlice(start, stop, step int, values []atom.Scalar) error {
	start, stop, step, err := normalizeSlice(start, stop, step, a.length)
	if err != nil {
		return err
	}
	var positions []int
	for i := start; i < stop; i += step {
		positions = append(positions, i)
	}
	return a.setByPositions(positions, values)
}

// SetFancy overwrites the atoms at indices; values may be length 1
// (broadcast) or exactly len(indices).
func (a *BArray) SetFancy(indices []int, values []atom.Scalar) error {
	positions := make([]int, len(indices))
	for i, idx := range indices {
		p, err := a.resolveIndex(idx)
		if err != nil {
			return err
		}
		positions[i] = p
	}
	return a.setByPositions(positions, values)
}

// SetBoolMask overwrites every atom where mask is true; values may be
// length 1 (broadcast) or exactly the number of true entries.
func (a *BArray) SetBoolMask(mask []bool, values []atom.Scalar) error {
	if len(mask) != a.length {
		return blzerr.NewValueError("barray: bool mask length %d != array length %d", len(mask), a.length)
	}
	var positions []int
	for i, t := range mask {
		if t {
			positions = append(positions, i)
		}
	}
	return a.setByPositions(positions, values)
}

// Trim reduces length by exactly n; a negative n grows the array by |n|
// atoms of dflt ("negative trim grows", spec.md §4.4).
func (a *BArray) Trim(n int) error {
	if a.mode == "r" {
		return blzerr.NewReadOnlyError("barray: trim on read-only array")
	}
	if n < 0 {
		return a.appendDefaultN(-n)
	}
	if n > a.length {
		return blzerr.NewValueError("barray: trim(%d) exceeds length %d", n, a.length)
	}
	return a.Resize(a.length - n)
}

// Resize shrinks (deleting full chunks then the tail) or grows (appending
// constant-dflt chunks, O(1) storage) to newLen.
func (a *BArray) Resize(newLen int) error {
	if a.mode == "r" {
		return blzerr.NewReadOnlyError("barray: resize on read-only array")
	}
	if newLen < 0 {
		return blzerr.NewValueError("barray: resize: negative length %d", newLen)
	}
	switch {
	case newLen == a.length:
		return nil
	case newLen < a.length:
		return a.shrinkTo(newLen)
	default:
		return a.appendDefaultN(newLen - a.length)
	}
}

func (a *BArray) shrinkTo(newLen int) error {
	fullLen := a.store.Len() * a.chunklen
	if newLen >= fullLen {
		keep := newLen - fullLen
		a.leftover = append([]byte(nil), a.leftover[:keep*a.itemsize]...)
		a.leftoverItems = keep
		a.length = newLen
		a.dirty = true
		return nil
	}
	keepChunks := newLen / a.chunklen
	rem := newLen % a.chunklen
	var newLeftover []byte
	if rem > 0 {
		c, err := a.store.Read(keepChunks)
		if err != nil {
			return err
		}
		dense := make([]byte, c.NBytes())
		if err := c.DecompressInto(dense); err != nil {
			return err
		}
		newLeftover = append([]byte(nil), dense[:rem*a.itemsize]...)
	}
	if err := a.store.Truncate(keepChunks); err != nil {
		return err
	}
	a.leftover = newLeftover
	a.leftoverItems = rem
	a.length = newLen
	a.dirty = true
	return nil
}
