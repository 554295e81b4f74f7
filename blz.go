// Package blz is the top-level facade: a compressed, chunked array/table
// engine (spec.md §1). It re-exports the constructors and free functions
// spec.md §4's "Public API surface" names (zeros, ones, fill, arange,
// fromiter, open, iterblocks, whereblocks, eval, walk, set_nthreads) atop
// pkg/barray, pkg/btable, and pkg/eval, plus the seven error kinds of
// spec.md §7 as concrete exported types.
package blz

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/barray"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
	"github.com/ContinuumIO/blz/pkg/eval"
)

// Type aliases so callers can errors.As against blz.IndexError etc.
// without reaching into pkg/blzerr directly (SPEC_FULL.md §7).
type (
	IndexError         = blzerr.IndexError
	DtypeError         = blzerr.DtypeError
	ReadOnlyError      = blzerr.ReadOnlyError
	ValueError         = blzerr.ValueError
	UnimplementedError = blzerr.UnimplementedError
	CorruptedDataError = blzerr.CorruptedDataError
	IOError            = blzerr.IOError
)

// Atom re-exports the common scalar dtypes so callers rarely need to
// import pkg/atom directly for the common case.
type (
	Atom  = atom.Atom
	Kind  = atom.Kind
	Array = eval.Array
)

// BArray and BTable are re-exported so `blz.BArray`/`blz.BTable` read as
// the package's own vocabulary, matching spec.md §3's type names.
type (
	BArray  = barray.BArray
	Options = barray.Options
)

// Zeros builds an n-item array of dtype's zero value.
func Zeros(n int, dtype atom.Atom, opts Options) (*BArray, error) {
	return barray.Zeros(n, dtype, opts)
}

// Ones builds an n-item array of dtype's multiplicative identity.
func Ones(n int, dtype atom.Atom, opts Options) (*BArray, error) {
	return barray.Ones(n, dtype, opts)
}

// Fill builds an n-item array filled with value.
func Fill(n int, dtype atom.Atom, value atom.Scalar, opts Options) (*BArray, error) {
	return barray.Fill(n, dtype, value, opts)
}

// Arange builds an arithmetic-progression array over [start,stop) stepping
// by step.
func Arange(start, stop, step int64, dtype atom.Atom, opts Options) (*BArray, error) {
	return barray.Arange(start, stop, step, dtype, opts)
}

// FromIter drains next into a new array; count<0 grows dynamically until
// next reports exhaustion.
func FromIter(next barray.IterFunc, dtype atom.Atom, count int, opts Options) (*BArray, error) {
	return barray.FromIter(next, dtype, count, opts)
}

// New builds an array directly from in-memory values.
func New(values []atom.Scalar, dtype atom.Atom, opts Options) (*BArray, error) {
	return barray.New(values, dtype, opts)
}

// Open reopens a disk-backed BArray in mode "r" (read-only) or "a"
// (append).
func Open(rootdir, mode string) (*BArray, error) {
	return barray.Open(rootdir, mode)
}

// IterBlocks exposes strided dense decompression directly with no
// expression evaluated (spec.md §4.6).
func IterBlocks(a eval.Array, blen, start, stop int) (*eval.BlockStream, error) {
	return eval.IterBlocks(a, blen, start, stop)
}

// WhereBlocks evaluates expr against a free-standing set of named
// bindings (not necessarily a BTable's columns) and yields the matching
// absolute positions, the top-level counterpart of BArray.Where/BTable.Where
// for ad hoc multi-array expressions (spec.md §4's "Top-level: ...
// whereblocks...").
func WhereBlocks(expr string, bindings map[string]eval.Array, skip, limit int) ([]int, error) {
	e, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	return eval.WherePositions(e, eval.MapBindings(bindings), skip, limit)
}

// Eval evaluates expr against bindings and returns a fresh BArray holding
// the dense result, streamed one chunk-stride at a time (spec.md §4.6's
// Evaluator algorithm, the top-level counterpart of BTable.Eval for ad hoc
// multi-array expressions not bound to a table).
func Eval(expr string, bindings map[string]eval.Array, params *chunkenc.Override) (*BArray, error) {
	e, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	stream, err := e.Run(eval.MapBindings(bindings))
	if err != nil {
		return nil, err
	}

	var dst *BArray
	for {
		v, _, ok, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		dense, resultAtom, err := v.EncodeDense()
		if err != nil {
			return nil, err
		}
		if dst == nil {
			opts := Options{}
			if params != nil {
				opts.Params = *params
			}
			dst, err = barray.Zeros(0, resultAtom, opts)
			if err != nil {
				return nil, err
			}
		}
		if err := dst.AppendDense(dense); err != nil {
			return nil, err
		}
	}
	if dst == nil {
		return barray.Zeros(0, atom.New(atom.Bool), Options{})
	}
	return dst, nil
}

// SetNThreads configures the process-wide codec concurrency bound (spec.md
// §5: "Thread count defaults to detected CPU count").
func SetNThreads(n int) { chunkenc.SetNThreads(n) }

// NThreads returns the current codec concurrency bound.
func NThreads() int { return chunkenc.NThreads() }

// Walk discovers BLZ array containers under root by matching **/meta via
// doublestar globbing, returning each container's directory (the parent of
// the matched meta file) — spec.md §4's top-level `walk`.
func Walk(root string) ([]string, error) {
	matches, err := doublestar.Glob(filepath.Join(root, "**", "meta"))
	if err != nil {
		return nil, blzerr.WrapIO(err, "walking %s", root)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Dir(m)
	}
	return out, nil
}
