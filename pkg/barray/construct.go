package barray

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// Zeros builds an n-element array whose every atom is dtype's zero value,
// stored as constant chunks (near-free, per spec.md §4.4).
func Zeros(n int, dtype atom.Atom, opts Options) (*BArray, error) {
	if opts.Dflt == nil {
		opts.Dflt = dtype.Zero()
	}
	return Fill(n, dtype, opts.Dflt, opts)
}

// Ones builds an n-element array of dtype's natural "1" value.
func Ones(n int, dtype atom.Atom, opts Options) (*BArray, error) {
	one, err := oneValue(dtype)
	if err != nil {
		return nil, err
	}
	return Fill(n, dtype, one, opts)
}

func oneValue(dtype atom.Atom) (atom.Scalar, error) {
	switch dtype.Kind {
	case atom.Int8:
		return int8(1), nil
	case atom.Int16:
		return int16(1), nil
	case atom.Int32:
		return int32(1), nil
	case atom.Int64:
		return int64(1), nil
	case atom.Uint8:
		return uint8(1), nil
	case atom.Uint16:
		return uint16(1), nil
	case atom.Uint32:
		return uint32(1), nil
	case atom.Uint64:
		return uint64(1), nil
	case atom.Float32:
		return float32(1), nil
	case atom.Float64:
		return float64(1), nil
	case atom.Bool:
		return true, nil
	default:
		return nil, blzerr.NewDtypeError("barray: ones: dtype %s has no natural '1' value", dtype.Kind)
	}
}

// Fill builds an n-element array whose every atom is dflt, eagerly
// compressed — runs of dflt collapse into constant chunks as a natural
// consequence of chunkenc.New's constant-run detection, never a special
// case this function has to implement itself.
func Fill(n int, dtype atom.Atom, dflt atom.Scalar, opts Options) (*BArray, error) {
	if n < 0 {
		return nil, blzerr.NewValueError("barray: fill: negative length %d", n)
	}
	opts.Dflt = dflt
	a, err := newShell(dtype, opts)
	if err != nil {
		return nil, err
	}
	if err := a.appendDefaultN(n); err != nil {
		return nil, err
	}
	return a, nil
}

// Arange builds an array from the arithmetic sequence start, start+step,
// ... up to (not including) stop, matching Python's range semantics for
// both positive and negative step.
func Arange(start, stop, step int64, dtype atom.Atom, opts Options) (*BArray, error) {
	if step == 0 {
		return nil, blzerr.NewValueError("barray: arange: step cannot be 0")
	}
	a, err := newShell(dtype, opts)
	if err != nil {
		return nil, err
	}
	n := 0
	if step > 0 {
		for v := start; v < stop; v += step {
			n++
		}
	} else {
		for v := start; v > stop; v += step {
			n++
		}
	}
	const batchMax = 1 << 16
	v := start
	count := 0
	for count < n {
		batch := n - count
		if batch > batchMax {
			batch = batchMax
		}
		buf := make([]byte, batch*a.itemsize)
		for i := 0; i < batch; i++ {
			if err := a.dtype.Encode(intToScalar(dtype.Kind, v), buf[i*a.itemsize:(i+1)*a.itemsize]); err != nil {
				return nil, blzerr.NewDtypeError("barray: arange: %v", err)
			}
			v += step
		}
		if err := a.AppendDense(buf); err != nil {
			return nil, err
		}
		count += batch
	}
	return a, nil
}

func intToScalar(k atom.Kind, v int64) atom.Scalar {
	switch k {
	case atom.Int8:
		return int8(v)
	case atom.Int16:
		return int16(v)
	case atom.Int32:
		return int32(v)
	case atom.Uint8:
		return uint8(v)
	case atom.Uint16:
		return uint16(v)
	case atom.Uint32:
		return uint32(v)
	case atom.Uint64:
		return uint64(v)
	case atom.Float32:
		return float32(v)
	case atom.Float64:
		return float64(v)
	default:
		return v
	}
}

// IterFunc is the pull-based source FromIter consumes: ok=false ends the
// sequence, a non-nil error aborts construction.
type IterFunc func() (value atom.Scalar, ok bool, err error)

// FromIter builds an array by chunked consumption of next. When count>=0
// it stops after count values (or when next runs dry); count==-1 grows
// the staging batch geometrically (spec.md §4.4: "the sink grows
// dynamically with geometric resizing of the staging buffer").
func FromIter(next IterFunc, dtype atom.Atom, count int, opts Options) (*BArray, error) {
	a, err := newShell(dtype, opts)
	if err != nil {
		return nil, err
	}

	drawBatch := func(batch int) (int, error) {
		buf := make([]byte, 0, batch*a.itemsize)
		got := 0
		for got < batch {
			v, ok, err := next()
			if err != nil {
				return got, err
			}
			if !ok {
				break
			}
			b := make([]byte, a.itemsize)
			if err := a.dtype.Encode(v, b); err != nil {
				return got, blzerr.NewDtypeError("barray: fromiter: %v", err)
			}
			buf = append(buf, b...)
			got++
		}
		if got > 0 {
			if err := a.AppendDense(buf); err != nil {
				return got, err
			}
		}
		return got, nil
	}

	if count >= 0 {
		remaining := count
		const batchMax = 1 << 16
		for remaining > 0 {
			batch := remaining
			if batch > batchMax {
				batch = batchMax
			}
			got, err := drawBatch(batch)
			if err != nil {
				return nil, err
			}
			remaining -= got
			if got < batch {
				break
			}
		}
		return a, nil
	}

	batch := 1024
	for {
		got, err := drawBatch(batch)
		if err != nil {
			return nil, err
		}
		if got < batch {
			break
		}
		batch *= 2
	}
	return a, nil
}

// New materializes values (an array-like source, spec.md §4.4's
// `barray(source, ...)`) into a fresh BArray.
func New(values []atom.Scalar, dtype atom.Atom, opts Options) (*BArray, error) {
	a, err := newShell(dtype, opts)
	if err != nil {
		return nil, err
	}
	if err := a.Append(values...); err != nil {
		return nil, err
	}
	return a, nil
}
