package barray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

func smallOpts() Options {
	return Options{Chunklen: 8}
}

func TestZerosConstantChunks(t *testing.T) {
	a, err := Zeros(100, atom.New(atom.Int32), smallOpts())
	require.NoError(t, err)
	require.Equal(t, 100, a.Len())
	v, err := a.Get(50)
	require.NoError(t, err)
	require.Equal(t, int32(0), v)
	// every full chunk should be constant; cbytes should be tiny relative to nbytes.
	require.Less(t, a.CBytes(), a.NBytes())
}

func TestOnesAndFill(t *testing.T) {
	ones, err := Ones(10, atom.New(atom.Float64), smallOpts())
	require.NoError(t, err)
	v, err := ones.Get(0)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)

	filled, err := Fill(5, atom.New(atom.Int16), int16(7), smallOpts())
	require.NoError(t, err)
	v2, err := filled.Get(4)
	require.NoError(t, err)
	require.Equal(t, int16(7), v2)
}

func TestArange(t *testing.T) {
	a, err := Arange(0, 20, 2, atom.New(atom.Int64), smallOpts())
	require.NoError(t, err)
	require.Equal(t, 10, a.Len())
	v, err := a.Get(5)
	require.NoError(t, err)
	require.Equal(t, int64(10), v)
}

func TestFromIterFixedCount(t *testing.T) {
	i := int64(0)
	next := func() (atom.Scalar, bool, error) {
		i++
		return i, true, nil
	}
	a, err := FromIter(next, atom.New(atom.Int64), 25, smallOpts())
	require.NoError(t, err)
	require.Equal(t, 25, a.Len())
	v, err := a.Get(24)
	require.NoError(t, err)
	require.Equal(t, int64(25), v)
}

func TestFromIterDynamic(t *testing.T) {
	vals := []int64{1, 2, 3, 4, 5}
	idx := 0
	next := func() (atom.Scalar, bool, error) {
		if idx >= len(vals) {
			return nil, false, nil
		}
		v := vals[idx]
		idx++
		return v, true, nil
	}
	a, err := FromIter(next, atom.New(atom.Int64), -1, smallOpts())
	require.NoError(t, err)
	require.Equal(t, 5, a.Len())
}

func TestNewFromValues(t *testing.T) {
	vals := []atom.Scalar{int32(1), int32(2), int32(3)}
	a, err := New(vals, atom.New(atom.Int32), smallOpts())
	require.NoError(t, err)
	require.Equal(t, 3, a.Len())
	v, err := a.Get(-1)
	require.NoError(t, err)
	require.Equal(t, int32(3), v)
}

func TestAppendAcrossChunks(t *testing.T) {
	a, err := Zeros(0, atom.New(atom.Int32), smallOpts())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.NoError(t, a.Append(int32(i)))
	}
	require.Equal(t, 20, a.Len())
	for i := 0; i < 20; i++ {
		v, err := a.Get(i)
		require.NoError(t, err)
		require.Equal(t, int32(i), v)
	}
}

func TestFlushAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir() + "/arr"
	a, err := New([]atom.Scalar{int32(1), int32(2), int32(3), int32(4), int32(5)}, atom.New(atom.Int32),
		Options{Chunklen: 2, Rootdir: dir, Params: chunkenc.Override{Cname: "lz4", Clevel: chunkenc.IntPtr(1)}})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := Open(dir, "r")
	require.NoError(t, err)
	require.Equal(t, 5, reopened.Len())
	v, err := reopened.Get(4)
	require.NoError(t, err)
	require.Equal(t, int32(5), v)

	err = reopened.Append(int32(6))
	require.Error(t, err)
}
