package barray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
)

func TestIteratorSkipLimit(t *testing.T) {
	a := seqArray(t, 10)
	it, err := a.Iter(0, 10, 1, 2, 3)
	require.NoError(t, err)
	var got []atom.Scalar
	for {
		v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []atom.Scalar{int32(2), int32(3), int32(4)}, got)
}

func TestIteratorStep(t *testing.T) {
	a := seqArray(t, 10)
	it, err := a.Iter(0, 10, 2, 0, -1)
	require.NoError(t, err)
	var got []atom.Scalar
	for {
		v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []atom.Scalar{int32(0), int32(2), int32(4), int32(6), int32(8)}, got)
}

func TestSumFloatConstantChunk(t *testing.T) {
	a, err := Fill(16, atom.New(atom.Float64), float64(2), smallOpts())
	require.NoError(t, err)
	sum, err := a.Sum()
	require.NoError(t, err)
	require.Equal(t, float64(32), sum)
}

func TestSumFloatMixed(t *testing.T) {
	vals := make([]atom.Scalar, 10)
	for i := range vals {
		vals[i] = float64(i)
	}
	a, err := New(vals, atom.New(atom.Float64), smallOpts())
	require.NoError(t, err)
	sum, err := a.Sum()
	require.NoError(t, err)
	require.Equal(t, float64(45), sum)
}

func TestSumInt(t *testing.T) {
	a := seqArray(t, 10)
	sum, err := a.Sum()
	require.NoError(t, err)
	require.Equal(t, int64(45), sum)
}

func TestSumBool(t *testing.T) {
	vals := []atom.Scalar{true, false, true, true, false}
	a, err := New(vals, atom.New(atom.Bool), smallOpts())
	require.NoError(t, err)
	sum, err := a.Sum()
	require.NoError(t, err)
	require.Equal(t, int64(3), sum)
}

func TestWhereTrue(t *testing.T) {
	vals := []atom.Scalar{true, false, true, true, false}
	a, err := New(vals, atom.New(atom.Bool), smallOpts())
	require.NoError(t, err)
	positions, err := a.WhereTrue(0, -1)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 3}, positions)
}

func TestWhereTrueWrongDtype(t *testing.T) {
	a := seqArray(t, 5)
	_, err := a.WhereTrue(0, -1)
	require.Error(t, err)
}

func TestWhereMask(t *testing.T) {
	a := seqArray(t, 5)
	mask := []bool{true, false, true, false, true}
	vals, err := a.WhereMask(mask, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(2), int32(4)}, vals)
}

func TestWhereExprAndGetExpr(t *testing.T) {
	a := seqArray(t, 10)
	filtered, err := a.GetExpr("x > 6")
	require.NoError(t, err)
	vals, err := filtered.GetSlice(0, filtered.Len(), 1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(7), int32(8), int32(9)}, vals)
}
