package barray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

func TestAppendDtypeMismatchReturnsErrorNotPanic(t *testing.T) {
	a := seqArray(t, 3)
	err := a.Append("not an int32")
	require.Error(t, err)
	var dtErr *blzerr.DtypeError
	require.ErrorAs(t, err, &dtErr)
}

func TestSetItemDtypeMismatchReturnsErrorNotPanic(t *testing.T) {
	a := seqArray(t, 3)
	err := a.SetItem(0, "not an int32")
	require.Error(t, err)
	var dtErr *blzerr.DtypeError
	require.ErrorAs(t, err, &dtErr)
}

func TestSetItem(t *testing.T) {
	a := seqArray(t, 10)
	require.NoError(t, a.SetItem(3, int32(99)))
	v, err := a.Get(3)
	require.NoError(t, err)
	require.Equal(t, int32(99), v)
}

func TestSetSliceBroadcast(t *testing.T) {
	a := seqArray(t, 10)
	require.NoError(t, a.SetSlice(2, 6, 1, []atom.Scalar{int32(-1)}))
	vals, err := a.GetSlice(0, 10, 1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(1), int32(-1), int32(-1), int32(-1), int32(-1), int32(6), int32(7), int32(8), int32(9)}, vals)
}

func TestSetFancy(t *testing.T) {
	a := seqArray(t, 10)
	require.NoError(t, a.SetFancy([]int{0, 9}, []atom.Scalar{int32(100), int32(200)}))
	v0, _ := a.Get(0)
	v9, _ := a.Get(9)
	require.Equal(t, int32(100), v0)
	require.Equal(t, int32(200), v9)
}

func TestSetBoolMask(t *testing.T) {
	a := seqArray(t, 5)
	require.NoError(t, a.SetBoolMask([]bool{true, false, true, false, true}, []atom.Scalar{int32(0)}))
	vals, err := a.GetSlice(0, 5, 1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(1), int32(0), int32(3), int32(0)}, vals)
}

func TestReadOnlyRejectsAssignment(t *testing.T) {
	dir := t.TempDir() + "/ro"
	a, err := New([]atom.Scalar{int32(1), int32(2)}, atom.New(atom.Int32), Options{Chunklen: 4, Rootdir: dir})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	ro, err := Open(dir, "r")
	require.NoError(t, err)
	err = ro.SetItem(0, int32(9))
	require.Error(t, err)
}

func TestTrimPositiveAndNegative(t *testing.T) {
	a := seqArray(t, 10)
	require.NoError(t, a.Trim(3))
	require.Equal(t, 7, a.Len())

	require.NoError(t, a.Trim(-2))
	require.Equal(t, 9, a.Len())
	v, err := a.Get(8)
	require.NoError(t, err)
	require.Equal(t, int32(0), v) // grew with dflt (zero)
}

func TestTrimTooMuch(t *testing.T) {
	a := seqArray(t, 5)
	err := a.Trim(10)
	require.Error(t, err)
}

func TestResizeShrinkAcrossChunkAndLeftover(t *testing.T) {
	a := seqArray(t, 10) // chunklen 4
	require.NoError(t, a.Resize(5))
	require.Equal(t, 5, a.Len())
	vals, err := a.GetSlice(0, 5, 1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(0), int32(1), int32(2), int32(3), int32(4)}, vals)
}

func TestResizeGrow(t *testing.T) {
	a := seqArray(t, 3)
	require.NoError(t, a.Resize(10))
	require.Equal(t, 10, a.Len())
	v, err := a.Get(9)
	require.NoError(t, err)
	require.Equal(t, int32(0), v)
}
