package barray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
)

func seqArray(t *testing.T, n int) *BArray {
	t.Helper()
	vals := make([]atom.Scalar, n)
	for i := range vals {
		vals[i] = int32(i)
	}
	a, err := New(vals, atom.New(atom.Int32), Options{Chunklen: 4})
	require.NoError(t, err)
	return a
}

func TestGetOutOfRange(t *testing.T) {
	a := seqArray(t, 10)
	_, err := a.Get(10)
	require.Error(t, err)
	_, err = a.Get(-11)
	require.Error(t, err)
	v, err := a.Get(-1)
	require.NoError(t, err)
	require.Equal(t, int32(9), v)
}

func TestGetSliceAcrossChunks(t *testing.T) {
	a := seqArray(t, 10)
	vals, err := a.GetSlice(1, 9, 1)
	require.NoError(t, err)
	require.Len(t, vals, 8)
	require.Equal(t, int32(1), vals[0])
	require.Equal(t, int32(8), vals[7])
}

func TestGetSliceStep(t *testing.T) {
	a := seqArray(t, 10)
	vals, err := a.GetSlice(0, 10, 3)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(3), int32(6), int32(9)}, vals)
}

func TestGetSliceNegativeStepUnimplemented(t *testing.T) {
	a := seqArray(t, 10)
	_, err := a.GetSlice(0, 10, -1)
	require.Error(t, err)
}

func TestGetFancy(t *testing.T) {
	a := seqArray(t, 10)
	vals, err := a.GetFancy([]int{0, 5, -1})
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(5), int32(9)}, vals)
}

func TestGetBoolMask(t *testing.T) {
	a := seqArray(t, 5)
	mask := []bool{true, false, true, false, true}
	vals, err := a.GetBoolMask(mask)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(2), int32(4)}, vals)
}

func TestReadDenseSpansLeftover(t *testing.T) {
	a := seqArray(t, 10) // chunklen 4: chunks [0-3][4-7], leftover [8,9]
	dense, err := a.ReadDense(6, 10)
	require.NoError(t, err)
	vals, err := a.decodeAll(dense)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(6), int32(7), int32(8), int32(9)}, vals)
}
