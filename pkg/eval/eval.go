package eval

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

const defaultStride = 4096

// Run resolves e's referenced names against b and returns a pull-based
// Stream that evaluates one chunk-stride at a time: spec.md §4.6's
// algorithm ("Determine chunk stride S ... over i = 0, S, 2S, ... slice
// each input ... evaluate ... append the dense result").
func (e *Expr) Run(b Bindings) (*Stream, error) {
	arrays := make(map[string]Array, len(e.names))
	length := -1
	stride := defaultStride
	first := true
	for _, name := range e.names {
		a, ok := b.Lookup(name)
		if !ok {
			return nil, blzerr.NewValueError("eval: unbound name %q in expression %q", name, e.src)
		}
		arrays[name] = a
		if first {
			length = a.Len()
			stride = a.Chunklen()
			first = false
			continue
		}
		if a.Len() != length {
			return nil, blzerr.NewValueError("eval: operand %q has length %d, expected %d", name, a.Len(), length)
		}
		// spec §4.6: stride clamps to the smallest input's chunklen.
		if a.Chunklen() < stride {
			stride = a.Chunklen()
		}
	}
	if length < 0 {
		length = 0
	}
	if stride <= 0 {
		stride = defaultStride
	}
	return &Stream{expr: e, arrays: arrays, length: length, stride: stride}, nil
}

// Stream is a lazy, finite, non-restartable sequence of evaluated strides,
// mirroring the iteration contract spec.md §4.4 describes for BArray.iter.
type Stream struct {
	expr   *Expr
	arrays map[string]Array
	pos    int
	length int
	stride int
	err    error
}

// Len is the total element count this stream will produce across all
// strides.
func (s *Stream) Len() int { return s.length }

// Next returns the next stride's evaluated Value along with the absolute
// starting index it covers, or ok=false once exhausted.
func (s *Stream) Next() (v Value, start int, ok bool, err error) {
	if s.err != nil {
		return Value{}, 0, false, s.err
	}
	if s.pos >= s.length {
		return Value{}, 0, false, nil
	}
	start = s.pos
	stop := s.pos + s.stride
	if stop > s.length {
		stop = s.length
	}
	env := make(map[string]Value, len(s.arrays))
	for name, a := range s.arrays {
		buf, err := a.ReadDense(start, stop)
		if err != nil {
			s.err = err
			return Value{}, 0, false, err
		}
		val, err := decodeDense(a.Dtype(), buf)
		if err != nil {
			s.err = err
			return Value{}, 0, false, err
		}
		env[name] = val
	}
	result, err := s.expr.root.eval(env)
	if err != nil {
		s.err = err
		return Value{}, 0, false, err
	}
	s.pos = stop
	return result, start, true, nil
}

// BlockStream exposes raw dense decompression directly, with no
// expression evaluated — spec.md §4.6's `iterblocks`.
type BlockStream struct {
	a      Array
	pos    int
	length int
	blen   int
}

// IterBlocks builds a BlockStream over [start,stop) of a, stepping blen
// atoms at a time (blen<=0 defaults to a's own chunklen).
func IterBlocks(a Array, blen, start, stop int) (*BlockStream, error) {
	if start < 0 {
		start = 0
	}
	if stop > a.Len() || stop < 0 {
		stop = a.Len()
	}
	if stop < start {
		return nil, blzerr.NewValueError("eval: IterBlocks: stop %d < start %d", stop, start)
	}
	if blen <= 0 {
		blen = a.Chunklen()
	}
	return &BlockStream{a: a, pos: start, length: stop, blen: blen}, nil
}

// Next returns the next dense block and its absolute start index.
func (b *BlockStream) Next() (start int, buf []byte, ok bool, err error) {
	if b.pos >= b.length {
		return 0, nil, false, nil
	}
	start = b.pos
	stop := b.pos + b.blen
	if stop > b.length {
		stop = b.length
	}
	buf, err = b.a.ReadDense(start, stop)
	if err != nil {
		return 0, nil, false, err
	}
	b.pos = stop
	return start, buf, true, nil
}

// WherePositions consumes a compiled boolean expression and yields the
// absolute index of every atom where it evaluates true, respecting skip
// and limit the way spec.md §4.4's wheretrue does, without ever
// materializing the whole result.
func WherePositions(e *Expr, b Bindings, skip, limit int) ([]int, error) {
	s, err := e.Run(b)
	if err != nil {
		return nil, err
	}
	var out []int
	emitted := 0
	skipped := 0
	for {
		v, start, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if v.Kind != VBool {
			return nil, blzerr.NewDtypeError("eval: where/wheretrue expression must be boolean, got %v", v.Kind)
		}
		for i, t := range v.Bools {
			if !t {
				continue
			}
			if skipped < skip {
				skipped++
				continue
			}
			if limit >= 0 && emitted >= limit {
				return out, nil
			}
			out = append(out, start+i)
			emitted++
		}
	}
	return out, nil
}

// atomOf is an unexported shorthand for k.ResultAtom(): it turns a
// Stream's eventual result Kind into a concrete dtype. Nothing in the
// package calls it.
func atomOf(k ValueKind) atom.Atom { return k.ResultAtom() }
