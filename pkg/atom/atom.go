// Package atom describes BLZ's fixed-width record type: the "atom" spec.md
// §3 defines as the logical record type `A` with `itemsize` bytes, either a
// primitive numeric/bool/fixed-string scalar or a compound (named,
// possibly nested) struct-of-fields.
//
// Atom intentionally avoids reflection on the chunk hot path: every
// operation that needs to move bytes dispatches on Kind via a switch, the
// generalization of bcolz's itemsize-driven dtype dispatch (see
// original_source/blz/tests/test_barray.py for the range of dtypes a real
// bcolz/blz deployment carries).
package atom

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"
)

// Kind tags the variant of a primitive or compound atom.
type Kind int

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128
	Bool
	Bytes   // fixed-width byte string, Width bytes
	Rune    // fixed-width unicode scalar, Width runes (UTF-32 code points)
	Compound
)

func (k Kind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	case Bool:
		return "bool"
	case Bytes:
		return "bytes"
	case Rune:
		return "rune"
	case Compound:
		return "compound"
	default:
		return "unknown"
	}
}

// Field is a named member of a Compound atom.
type Field struct {
	Name string
	Atom Atom
}

// Atom is a fixed-width logical record type.
type Atom struct {
	Kind   Kind
	Width  int     // Bytes: byte count. Rune: rune count.
	Fields []Field // only for Kind == Compound
}

// Scalar is a decoded atom value: a native Go scalar for primitives,
// a string for Rune, a []byte for Bytes, or a map[string]interface{} for
// Compound (keyed by field name, recursively Scalar-valued).
type Scalar = interface{}

// New returns the Atom for a primitive Kind (everything but Bytes/Rune/Compound).
func New(k Kind) Atom {
	switch k {
	case Bytes, Rune, Compound:
		panic(fmt.Sprintf("atom: %s requires width/fields, use NewBytes/NewRune/NewCompound", k))
	}
	return Atom{Kind: k}
}

// NewBytes returns a fixed-width byte-string Atom of width bytes.
func NewBytes(width int) Atom { return Atom{Kind: Bytes, Width: width} }

// NewRune returns a fixed-width unicode-scalar Atom of width code points.
func NewRune(width int) Atom { return Atom{Kind: Rune, Width: width} }

// NewCompound returns a struct-of-fields Atom, packed with no padding.
func NewCompound(fields ...Field) Atom { return Atom{Kind: Compound, Fields: fields} }

// ItemSize returns the number of bytes one atom occupies.
func (a Atom) ItemSize() int {
	switch a.Kind {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	case Bytes:
		return a.Width
	case Rune:
		return a.Width * 4
	case Compound:
		n := 0
		for _, f := range a.Fields {
			n += f.Atom.ItemSize()
		}
		return n
	default:
		panic(fmt.Sprintf("atom: unknown kind %d", a.Kind))
	}
}

// Zero returns the atom's default (zero) scalar value.
func (a Atom) Zero() Scalar {
	switch a.Kind {
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case Uint8:
		return uint8(0)
	case Uint16:
		return uint16(0)
	case Uint32:
		return uint32(0)
	case Uint64:
		return uint64(0)
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	case Complex64:
		return complex64(0)
	case Complex128:
		return complex128(0)
	case Bool:
		return false
	case Bytes:
		return make([]byte, a.Width)
	case Rune:
		return string(make([]rune, a.Width))
	case Compound:
		m := make(map[string]interface{}, len(a.Fields))
		for _, f := range a.Fields {
			m[f.Name] = f.Atom.Zero()
		}
		return m
	default:
		panic(fmt.Sprintf("atom: unknown kind %d", a.Kind))
	}
}

// Encode writes the itemsize-byte encoding of v into out, which must have
// length >= ItemSize().
func (a Atom) Encode(v Scalar, out []byte) error {
	size := a.ItemSize()
	if len(out) < size {
		return fmt.Errorf("atom: Encode: out too small (%d < %d)", len(out), size)
	}
	switch a.Kind {
	case Int8:
		x, err := mustInt64(v)
		if err != nil {
			return err
		}
		out[0] = byte(x)
	case Int16:
		x, err := mustInt64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(out, uint16(x))
	case Int32:
		x, err := mustInt64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(out, uint32(x))
	case Int64:
		x, err := mustInt64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(out, uint64(x))
	case Uint8:
		x, err := mustUint64(v)
		if err != nil {
			return err
		}
		out[0] = byte(x)
	case Uint16:
		x, err := mustUint64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(out, uint16(x))
	case Uint32:
		x, err := mustUint64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(out, uint32(x))
	case Uint64:
		x, err := mustUint64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(out, x)
	case Float32:
		x, err := mustFloat32(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(out, math.Float32bits(x))
	case Float64:
		x, err := mustFloat64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(out, math.Float64bits(x))
	case Complex64:
		c, err := mustComplex128(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(float32(real(c))))
		binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(float32(imag(c))))
	case Complex128:
		c, err := mustComplex128(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(out[0:8], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(out[8:16], math.Float64bits(imag(c)))
	case Bool:
		b, err := mustBool(v)
		if err != nil {
			return err
		}
		if b {
			out[0] = 1
		} else {
			out[0] = 0
		}
	case Bytes:
		b, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("atom: Encode: expected []byte, got %T", v)
		}
		n := copy(out[:a.Width], b)
		for ; n < a.Width; n++ {
			out[n] = 0
		}
	case Rune:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("atom: Encode: expected string, got %T", v)
		}
		rs := []rune(s)
		for i := 0; i < a.Width; i++ {
			var r rune
			if i < len(rs) {
				r = rs[i]
			}
			binary.LittleEndian.PutUint32(out[i*4:i*4+4], uint32(r))
		}
	case Compound:
		m, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("atom: Encode: expected map[string]interface{}, got %T", v)
		}
		off := 0
		for _, f := range a.Fields {
			sz := f.Atom.ItemSize()
			fv, present := m[f.Name]
			if !present {
				fv = f.Atom.Zero()
			}
			if err := f.Atom.Encode(fv, out[off:off+sz]); err != nil {
				return fmt.Errorf("atom: Encode: field %q: %w", f.Name, err)
			}
			off += sz
		}
	default:
		return fmt.Errorf("atom: Encode: unknown kind %d", a.Kind)
	}
	return nil
}

// Decode reads one atom from buf (which must have length >= ItemSize()).
func (a Atom) Decode(buf []byte) (Scalar, error) {
	size := a.ItemSize()
	if len(buf) < size {
		return nil, fmt.Errorf("atom: Decode: buf too small (%d < %d)", len(buf), size)
	}
	switch a.Kind {
	case Int8:
		return int8(buf[0]), nil
	case Int16:
		return int16(binary.LittleEndian.Uint16(buf)), nil
	case Int32:
		return int32(binary.LittleEndian.Uint32(buf)), nil
	case Int64:
		return int64(binary.LittleEndian.Uint64(buf)), nil
	case Uint8:
		return buf[0], nil
	case Uint16:
		return binary.LittleEndian.Uint16(buf), nil
	case Uint32:
		return binary.LittleEndian.Uint32(buf), nil
	case Uint64:
		return binary.LittleEndian.Uint64(buf), nil
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	case Complex64:
		re := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
		return complex(re, im), nil
	case Complex128:
		re := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
		return complex(re, im), nil
	case Bool:
		return buf[0] != 0, nil
	case Bytes:
		out := make([]byte, a.Width)
		copy(out, buf[:a.Width])
		return out, nil
	case Rune:
		rs := make([]rune, a.Width)
		for i := 0; i < a.Width; i++ {
			rs[i] = rune(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
		}
		return string(rs), nil
	case Compound:
		m := make(map[string]interface{}, len(a.Fields))
		off := 0
		for _, f := range a.Fields {
			sz := f.Atom.ItemSize()
			v, err := f.Atom.Decode(buf[off : off+sz])
			if err != nil {
				return nil, fmt.Errorf("atom: Decode: field %q: %w", f.Name, err)
			}
			m[f.Name] = v
			off += sz
		}
		return m, nil
	default:
		return nil, fmt.Errorf("atom: Decode: unknown kind %d", a.Kind)
	}
}

// Equal reports whether two decoded scalars of this Atom are equal.
func (a Atom) Equal(x, y Scalar) bool {
	switch a.Kind {
	case Bytes:
		xb, yb := x.([]byte), y.([]byte)
		if len(xb) != len(yb) {
			return false
		}
		for i := range xb {
			if xb[i] != yb[i] {
				return false
			}
		}
		return true
	case Complex64, Complex128:
		xc, xerr := mustComplex128(x)
		yc, yerr := mustComplex128(y)
		if xerr != nil || yerr != nil {
			return false
		}
		return cmplx.Abs(xc-yc) == 0
	case Compound:
		xm, ym := x.(map[string]interface{}), y.(map[string]interface{})
		for _, f := range a.Fields {
			if !f.Atom.Equal(xm[f.Name], ym[f.Name]) {
				return false
			}
		}
		return true
	default:
		return x == y
	}
}

// AllEqual reports whether every atom-sized slot in buf equals v.
func (a Atom) AllEqual(buf []byte, v Scalar) bool {
	size := a.ItemSize()
	if size == 0 || len(buf)%size != 0 {
		return false
	}
	want := make([]byte, size)
	if err := a.Encode(v, want); err != nil {
		return false
	}
	for off := 0; off < len(buf); off += size {
		for i := 0; i < size; i++ {
			if buf[off+i] != want[i] {
				return false
			}
		}
	}
	return true
}

// Fill writes n copies of v's encoding into out (len(out) must be n*ItemSize()).
func (a Atom) Fill(out []byte, v Scalar, n int) error {
	size := a.ItemSize()
	if len(out) < n*size {
		return fmt.Errorf("atom: Fill: out too small")
	}
	if n == 0 {
		return nil
	}
	if err := a.Encode(v, out[:size]); err != nil {
		return err
	}
	// Exponentially double the filled prefix to fill the rest.
	filled := size
	for filled < n*size {
		c := copy(out[filled:], out[:filled])
		filled += c
	}
	return nil
}

// Shuffle performs a byte-wise transpose of a dense buffer of n atoms with
// the given itemsize, the classic Blosc/bcolz byte-shuffle filter
// (original_source/blz/bparams.py): it groups together the k-th byte of
// every atom, which tends to improve compressibility of numeric arrays.
// itemsize==1 is a no-op (shuffle is meaningless for single-byte atoms).
func Shuffle(itemsize int, src []byte) []byte {
	if itemsize <= 1 || len(src) == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
	n := len(src) / itemsize
	out := make([]byte, len(src))
	for k := 0; k < itemsize; k++ {
		base := k * n
		for i := 0; i < n; i++ {
			out[base+i] = src[i*itemsize+k]
		}
	}
	return out
}

// Unshuffle reverses Shuffle.
func Unshuffle(itemsize int, src []byte) []byte {
	if itemsize <= 1 || len(src) == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
	n := len(src) / itemsize
	out := make([]byte, len(src))
	for k := 0; k < itemsize; k++ {
		base := k * n
		for i := 0; i < n; i++ {
			out[i*itemsize+k] = src[base+i]
		}
	}
	return out
}

// mustInt64 and its siblings below report a mismatched Scalar type as an
// error rather than panicking, so Encode can surface it as the
// blzerr.DtypeError spec §7 requires instead of crashing the caller.
func mustInt64(v Scalar) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("atom: expected integer scalar, got %T", v)
	}
}

func mustUint64(v Scalar) (uint64, error) {
	switch x := v.(type) {
	case int:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case int8:
		return uint64(x), nil
	case int16:
		return uint64(x), nil
	case int32:
		return uint64(x), nil
	case int64:
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("atom: expected integer scalar, got %T", v)
	}
}

func mustFloat32(v Scalar) (float32, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case float64:
		return float32(x), nil
	default:
		i, err := mustInt64(v)
		if err != nil {
			return 0, err
		}
		return float32(i), nil
	}
}

func mustFloat64(v Scalar) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	default:
		i, err := mustInt64(v)
		if err != nil {
			return 0, err
		}
		return float64(i), nil
	}
}

func mustComplex128(v Scalar) (complex128, error) {
	switch x := v.(type) {
	case complex128:
		return x, nil
	case complex64:
		return complex128(x), nil
	default:
		f, err := mustFloat64(v)
		if err != nil {
			return 0, err
		}
		return complex(f, 0), nil
	}
}

func mustBool(v Scalar) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("atom: expected bool scalar, got %T", v)
	}
	return b, nil
}
