// Package eval implements C6, spec.md §4.6's "direct interpreter": a small
// recursive-descent expression parser/evaluator over comparison, boolean,
// and arithmetic expressions referencing bound array/column names, walked
// once per chunk-sized stride rather than once per atom.
//
// pkg/eval never imports pkg/barray or pkg/btable. It defines the Array and
// Bindings interfaces those packages implement, so evaluation flows
// barray/btable -> eval, never the reverse.
package eval

import "github.com/ContinuumIO/blz/pkg/atom"

// Array is the capability pkg/eval needs from a bound operand: dense,
// chunk-strided reads of a homogeneous-dtype sequence. *barray.BArray
// implements this directly.
type Array interface {
	Len() int
	Chunklen() int
	Dtype() atom.Atom
	// ReadDense decodes the half-open range [start,stop) into a fresh dense
	// buffer of (stop-start)*Dtype().ItemSize() bytes.
	ReadDense(start, stop int) ([]byte, error)
}

// Bindings resolves the free names an expression references (column names
// for a BTable, or variables explicitly bound into an evaluation scope for
// a single BArray) to Arrays.
type Bindings interface {
	Lookup(name string) (Array, bool)
}

// MapBindings is the straightforward Bindings implementation: a plain name
// -> Array map, what BTable.Where/Eval builds from its column set.
type MapBindings map[string]Array

// Lookup implements Bindings.
func (m MapBindings) Lookup(name string) (Array, bool) {
	a, ok := m[name]
	return a, ok
}
