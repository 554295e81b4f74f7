package barray

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
	"github.com/ContinuumIO/blz/pkg/eval"
)

// Iterator is the lazy, finite, non-restartable atom sequence spec.md
// §4.4's iter(start,stop,step,limit,skip) describes.
type Iterator struct {
	a       *BArray
	pos     int
	stop    int
	step    int
	skip    int
	skipped int
	limit   int
	emitted int
	done    bool
	buf     []byte
}

// Iter builds an Iterator over [start,stop,step), discarding the first
// skip emitted atoms and capping total emission at limit (limit<0 means
// unlimited).
func (a *BArray) Iter(start, stop, step, skip, limit int) (*Iterator, error) {
	start, stop, step, err := normalizeSlice(start, stop, step, a.length)
	if err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	return &Iterator{a: a, pos: start, stop: stop, step: step, skip: skip, limit: limit, buf: make([]byte, a.itemsize)}, nil
}

// Next returns the next atom, or ok=false once the iterator is exhausted.
func (it *Iterator) Next() (atom.Scalar, bool, error) {
	if it.done {
		return nil, false, nil
	}
	for it.skipped < it.skip {
		if it.pos >= it.stop {
			it.done = true
			return nil, false, nil
		}
		it.pos += it.step
		it.skipped++
	}
	if it.pos >= it.stop || (it.limit >= 0 && it.emitted >= it.limit) {
		it.done = true
		return nil, false, nil
	}
	if err := it.a.readOneInto(it.pos, it.buf); err != nil {
		return nil, false, err
	}
	v, err := it.a.dtype.Decode(it.buf)
	if err != nil {
		return nil, false, err
	}
	it.pos += it.step
	it.emitted++
	return v, true, nil
}

// Sum streams chunks accumulating a scalar sum; constant chunks
// contribute nitems*value without touching the codec (spec.md §4.4).
func (a *BArray) Sum() (atom.Scalar, error) {
	switch a.dtype.Kind {
	case atom.Float32, atom.Float64:
		return a.sumFloat()
	case atom.Bool:
		return a.sumBool()
	case atom.Int8, atom.Int16, atom.Int32, atom.Int64,
		atom.Uint8, atom.Uint16, atom.Uint32, atom.Uint64:
		return a.sumInt()
	default:
		return nil, blzerr.NewDtypeError("barray: sum unsupported for dtype %s", a.dtype.Kind)
	}
}

func scalarToFloat(v atom.Scalar) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func scalarToInt64(v atom.Scalar) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	default:
		return 0
	}
}

// sumFloat takes the gonum.org/v1/gonum/floats.Sum fast path over each
// non-constant chunk's decoded dense buffer (SPEC_FULL.md §4.4).
func (a *BArray) sumFloat() (atom.Scalar, error) {
	var total float64
	buf := make([]byte, a.itemsize)
	for ci := 0; ci < a.store.Len(); ci++ {
		c, err := a.store.Read(ci)
		if err != nil {
			return nil, err
		}
		if c.Constant() {
			if err := c.GetOne(0, buf); err != nil {
				return nil, err
			}
			v, err := a.dtype.Decode(buf)
			if err != nil {
				return nil, err
			}
			total += float64(c.NItems()) * scalarToFloat(v)
			continue
		}
		dense := make([]byte, c.NBytes())
		if err := c.DecompressInto(dense); err != nil {
			return nil, err
		}
		vals, err := decodeFloatSlice(a.dtype, dense)
		if err != nil {
			return nil, err
		}
		total += floats.Sum(vals)
	}
	for i := 0; i < a.leftoverItems; i++ {
		v, err := a.dtype.Decode(a.leftover[i*a.itemsize : (i+1)*a.itemsize])
		if err != nil {
			return nil, err
		}
		total += scalarToFloat(v)
	}
	if a.dtype.Kind == atom.Float32 {
		return float32(total), nil
	}
	return total, nil
}

func decodeFloatSlice(a atom.Atom, dense []byte) ([]float64, error) {
	size := a.ItemSize()
	n := len(dense) / size
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := a.Decode(dense[i*size : (i+1)*size])
		if err != nil {
			return nil, err
		}
		out[i] = scalarToFloat(v)
	}
	return out, nil
}

func (a *BArray) sumInt() (atom.Scalar, error) {
	var total int64
	buf := make([]byte, a.itemsize)
	for ci := 0; ci < a.store.Len(); ci++ {
		c, err := a.store.Read(ci)
		if err != nil {
			return nil, err
		}
		if c.Constant() {
			if err := c.GetOne(0, buf); err != nil {
				return nil, err
			}
			v, err := a.dtype.Decode(buf)
			if err != nil {
				return nil, err
			}
			total += int64(c.NItems()) * scalarToInt64(v)
			continue
		}
		dense := make([]byte, c.NBytes())
		if err := c.DecompressInto(dense); err != nil {
			return nil, err
		}
		n := len(dense) / a.itemsize
		for i := 0; i < n; i++ {
			v, err := a.dtype.Decode(dense[i*a.itemsize : (i+1)*a.itemsize])
			if err != nil {
				return nil, err
			}
			total += scalarToInt64(v)
		}
	}
	for i := 0; i < a.leftoverItems; i++ {
		v, err := a.dtype.Decode(a.leftover[i*a.itemsize : (i+1)*a.itemsize])
		if err != nil {
			return nil, err
		}
		total += scalarToInt64(v)
	}
	return total, nil
}

func (a *BArray) sumBool() (atom.Scalar, error) {
	var total int64
	it, err := a.Iter(0, a.length, 1, 0, -1)
	if err != nil {
		return nil, err
	}
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if v.(bool) {
			total++
		}
	}
	return total, nil
}

var identityExpr = mustCompileIdentity()

func mustCompileIdentity() *eval.Expr {
	e, err := eval.Compile("x")
	if err != nil {
		panic(err)
	}
	return e
}

// WhereTrue yields the integer positions of true atoms in a bool array.
func (a *BArray) WhereTrue(skip, limit int) ([]int, error) {
	if a.dtype.Kind != atom.Bool {
		return nil, blzerr.NewDtypeError("barray: wheretrue requires a bool array, got %s", a.dtype.Kind)
	}
	return eval.WherePositions(identityExpr, eval.MapBindings{"x": a}, skip, limit)
}

// WhereMask yields the values of a where mask[i] is true (spec.md §4.4's
// where(mask, skip, limit), the bool-buffer form).
func (a *BArray) WhereMask(mask []bool, skip, limit int) ([]atom.Scalar, error) {
	if len(mask) != a.length {
		return nil, blzerr.NewValueError("barray: where: mask length %d != array length %d", len(mask), a.length)
	}
	var out []atom.Scalar
	emitted, skipped := 0, 0
	buf := make([]byte, a.itemsize)
	for i, t := range mask {
		if !t {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		if limit >= 0 && emitted >= limit {
			break
		}
		if err := a.readOneInto(i, buf); err != nil {
			return nil, err
		}
		v, err := a.dtype.Decode(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		emitted++
	}
	return out, nil
}

// Where evaluates expr (referencing this array as bindName) and returns a
// new BArray of the values where it's true — the string-expression form
// of spec.md §4.4's indexing contract and of `where`.
func (a *BArray) Where(expr string, bindName string, skip, limit int) (*BArray, error) {
	e, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	positions, err := eval.WherePositions(e, eval.MapBindings{bindName: a}, skip, limit)
	if err != nil {
		return nil, err
	}
	scalars, err := a.GetFancy(positions)
	if err != nil {
		return nil, err
	}
	return New(scalars, a.dtype, Options{Chunklen: a.chunklen, Params: chunkenc.Override{
		Cname:   a.params.Cname,
		Clevel:  chunkenc.IntPtr(a.params.Clevel),
		Shuffle: chunkenc.BoolPtr(a.params.Shuffle),
	}})
}

// GetExpr evaluates a boolean expression over this array (bound under the
// conventional name "x") and returns the filtered result as a new
// BArray — the "string expression -> evaluated via Evaluator -> new
// BArray" row of spec.md §4.4's indexing contract table.
func (a *BArray) GetExpr(expr string) (*BArray, error) {
	return a.Where(expr, "x", 0, -1)
}
