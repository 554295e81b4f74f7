package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
)

// fakeArray is a minimal in-memory Array for exercising the evaluator
// without depending on pkg/barray (which itself depends on pkg/eval).
type fakeArray struct {
	dtype    atom.Atom
	chunklen int
	values   []atom.Scalar
}

func (a *fakeArray) Len() int          { return len(a.values) }
func (a *fakeArray) Chunklen() int     { return a.chunklen }
func (a *fakeArray) Dtype() atom.Atom  { return a.dtype }
func (a *fakeArray) ReadDense(start, stop int) ([]byte, error) {
	size := a.dtype.ItemSize()
	out := make([]byte, (stop-start)*size)
	for i := start; i < stop; i++ {
		if err := a.dtype.Encode(a.values[i], out[(i-start)*size:(i-start+1)*size]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func int64Array(chunklen int, vals ...int64) *fakeArray {
	scalars := make([]atom.Scalar, len(vals))
	for i, v := range vals {
		scalars[i] = v
	}
	return &fakeArray{dtype: atom.New(atom.Int64), chunklen: chunklen, values: scalars}
}

func TestEvalArithmeticAndComparison(t *testing.T) {
	b := MapBindings{"x": int64Array(4, 1, 2, 3, 4, 5, 6, 7, 8, 9)}
	e, err := Compile("x * 2 > 10")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, e.Names())

	s, err := e.Run(b)
	require.NoError(t, err)

	var got []bool
	for {
		v, _, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v.Bools...)
	}
	want := []bool{false, false, false, false, false, true, true, true, true}
	require.Equal(t, want, got)
}

func TestEvalLogicalAndParens(t *testing.T) {
	b := MapBindings{"x": int64Array(8, 1, 2, 3, 4, 5, 6, 7, 8)}
	e, err := Compile("(x > 2) && (x < 6)")
	require.NoError(t, err)
	s, err := e.Run(b)
	require.NoError(t, err)
	v, _, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []bool{false, false, true, true, true, false, false, false}, v.Bools)
}

func TestEvalUnboundName(t *testing.T) {
	_, err := Compile("y + 1")
	require.NoError(t, err)
	e, _ := Compile("y + 1")
	_, err = e.Run(MapBindings{})
	require.Error(t, err)
}

func TestEvalLengthMismatch(t *testing.T) {
	b := MapBindings{
		"x": int64Array(4, 1, 2, 3),
		"y": int64Array(4, 1, 2),
	}
	e, err := Compile("x + y")
	require.NoError(t, err)
	_, err = e.Run(b)
	require.Error(t, err)
}

func TestWherePositions(t *testing.T) {
	b := MapBindings{"x": int64Array(4, 10, 20, 5, 30, 15, 40)}
	e, err := Compile("x > 12")
	require.NoError(t, err)
	pos, err := WherePositions(e, b, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 4, 5}, pos)
}

func TestWherePositionsSkipLimit(t *testing.T) {
	b := MapBindings{"x": int64Array(4, 10, 20, 5, 30, 15, 40)}
	e, err := Compile("x > 12")
	require.NoError(t, err)
	pos, err := WherePositions(e, b, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, pos)
}

func TestIterBlocks(t *testing.T) {
	a := int64Array(3, 1, 2, 3, 4, 5, 6, 7)
	bs, err := IterBlocks(a, 0, 0, a.Len())
	require.NoError(t, err)
	var total int
	for {
		start, buf, ok, err := bs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.True(t, len(buf)%8 == 0)
		total += len(buf) / 8
		_ = start
	}
	require.Equal(t, 7, total)
}

func TestFloatPromotion(t *testing.T) {
	ints := int64Array(4, 1, 2, 3)
	b := MapBindings{"x": ints}
	e, err := Compile("x * 1.5")
	require.NoError(t, err)
	s, err := e.Run(b)
	require.NoError(t, err)
	v, _, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, VFloat, v.Kind)
	require.InDeltaSlice(t, []float64{1.5, 3.0, 4.5}, v.Floats, 1e-9)
}
