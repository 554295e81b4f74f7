package eval

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// ValueKind tags the three scalar families the kernel computes over: the
// evaluator only ever needs bool (predicates), int64 (integer dtypes), and
// float64 (float dtypes) — every bound dtype decodes into one of these,
// and every expression result re-encodes from one of these.
type ValueKind int

const (
	VBool ValueKind = iota
	VInt
	VFloat
)

// Value is one dense stride's worth of evaluated data: either a length-1
// scalar (a literal, or the broadcast operand of a binary op) or a
// length-S vector sliced from a bound Array.
type Value struct {
	Kind   ValueKind
	Bools  []bool
	Ints   []int64
	Floats []float64
}

// Len returns the number of elements this Value carries.
func (v Value) Len() int {
	switch v.Kind {
	case VBool:
		return len(v.Bools)
	case VInt:
		return len(v.Ints)
	default:
		return len(v.Floats)
	}
}

func boolScalar(b bool) Value    { return Value{Kind: VBool, Bools: []bool{b}} }
func intScalar(i int64) Value    { return Value{Kind: VInt, Ints: []int64{i}} }
func floatScalar(f float64) Value { return Value{Kind: VFloat, Floats: []float64{f}} }

// atF returns element i as a float64, widening ints as needed.
func (v Value) atF(i int) float64 {
	switch v.Kind {
	case VFloat:
		return v.Floats[i]
	case VInt:
		return float64(v.Ints[i])
	default:
		if v.Bools[i] {
			return 1
		}
		return 0
	}
}

func (v Value) atI(i int) int64 {
	switch v.Kind {
	case VInt:
		return v.Ints[i]
	case VBool:
		if v.Bools[i] {
			return 1
		}
		return 0
	default:
		return int64(v.Floats[i])
	}
}

func (v Value) atB(i int) bool {
	switch v.Kind {
	case VBool:
		return v.Bools[i]
	case VInt:
		return v.Ints[i] != 0
	default:
		return v.Floats[i] != 0
	}
}

// idx maps a broadcast read: a length-1 operand always reads index 0.
func idx(v Value, i int) int {
	if v.Len() == 1 {
		return 0
	}
	return i
}

// ResultAtom returns the default dtype used to materialize a Value of
// this Kind into a BArray (Bool -> atom.Bool, Int -> atom.Int64, Float ->
// atom.Float64 — the widest native representation of each family, since
// the interpreter does not track a narrower source dtype through
// arithmetic).
func (k ValueKind) ResultAtom() atom.Atom {
	switch k {
	case VBool:
		return atom.New(atom.Bool)
	case VInt:
		return atom.New(atom.Int64)
	default:
		return atom.New(atom.Float64)
	}
}

// EncodeDense serializes v as a dense buffer of its ResultAtom's itemsize.
func (v Value) EncodeDense() ([]byte, atom.Atom, error) {
	a := v.Kind.ResultAtom()
	n := v.Len()
	out := make([]byte, n*a.ItemSize())
	for i := 0; i < n; i++ {
		var scalar atom.Scalar
		switch v.Kind {
		case VBool:
			scalar = v.Bools[i]
		case VInt:
			scalar = v.Ints[i]
		default:
			scalar = v.Floats[i]
		}
		if err := a.Encode(scalar, out[i*a.ItemSize():(i+1)*a.ItemSize()]); err != nil {
			return nil, a, blzerr.WrapCorrupted(err, "encoding eval result element %d", i)
		}
	}
	return out, a, nil
}

// decodeDense decodes a dense buffer of a's atoms into a Value, the
// boundary between pkg/atom's reflective-free byte layer and the
// evaluator's typed working set. Bytes/Rune/Compound dtypes aren't valid
// operands in an expression.
func decodeDense(a atom.Atom, buf []byte) (Value, error) {
	size := a.ItemSize()
	if size == 0 || len(buf)%size != 0 {
		return Value{}, blzerr.NewValueError("eval: dense buffer length %d not a multiple of itemsize %d", len(buf), size)
	}
	n := len(buf) / size

	switch a.Kind {
	case atom.Bool:
		out := make([]bool, n)
		for i := 0; i < n; i++ {
			s, err := a.Decode(buf[i*size : (i+1)*size])
			if err != nil {
				return Value{}, err
			}
			out[i] = s.(bool)
		}
		return Value{Kind: VBool, Bools: out}, nil
	case atom.Float32, atom.Float64:
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			s, err := a.Decode(buf[i*size : (i+1)*size])
			if err != nil {
				return Value{}, err
			}
			switch x := s.(type) {
			case float32:
				out[i] = float64(x)
			case float64:
				out[i] = x
			}
		}
		return Value{Kind: VFloat, Floats: out}, nil
	case atom.Int8, atom.Int16, atom.Int32, atom.Int64,
		atom.Uint8, atom.Uint16, atom.Uint32, atom.Uint64:
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			s, err := a.Decode(buf[i*size : (i+1)*size])
			if err != nil {
				return Value{}, err
			}
			out[i] = toInt64(s)
		}
		return Value{Kind: VInt, Ints: out}, nil
	default:
		return Value{}, blzerr.NewDtypeError("eval: dtype %s cannot be used as an expression operand", a.Kind)
	}
}

func toInt64(s atom.Scalar) int64 {
	switch x := s.(type) {
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
