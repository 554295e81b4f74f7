package barray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

func TestCopySingleChunk(t *testing.T) {
	a, err := New([]atom.Scalar{int32(1), int32(2), int32(3)}, atom.New(atom.Int32), Options{Chunklen: 8})
	require.NoError(t, err)
	dst, err := a.Copy(nil)
	require.NoError(t, err)
	require.Equal(t, a.Len(), dst.Len())
	vals, err := dst.GetSlice(0, dst.Len(), 1)
	require.NoError(t, err)
	require.Equal(t, []atom.Scalar{int32(1), int32(2), int32(3)}, vals)
}

func TestCopyMultipleChunksWithLeftover(t *testing.T) {
	vals := make([]atom.Scalar, 22)
	for i := range vals {
		vals[i] = int32(i)
	}
	a, err := New(vals, atom.New(atom.Int32), Options{Chunklen: 4})
	require.NoError(t, err)

	dst, err := a.Copy(nil)
	require.NoError(t, err)
	require.Equal(t, 22, dst.Len())
	got, err := dst.GetSlice(0, 22, 1)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestCopyWithRetunedParams(t *testing.T) {
	vals := make([]atom.Scalar, 20)
	for i := range vals {
		vals[i] = int32(i)
	}
	a, err := New(vals, atom.New(atom.Int32), Options{Chunklen: 4, Params: chunkenc.Override{Cname: "store"}})
	require.NoError(t, err)

	dst, err := a.Copy(&chunkenc.Override{Cname: "lz4", Clevel: chunkenc.IntPtr(1)})
	require.NoError(t, err)
	require.Equal(t, 20, dst.Len())
	require.Equal(t, "lz4", dst.Params().Cname)
	require.Equal(t, 1, dst.Params().Clevel)
	got, err := dst.GetSlice(0, 20, 1)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestCopyRetunedClevelZeroIsExplicit(t *testing.T) {
	vals := make([]atom.Scalar, 10)
	for i := range vals {
		vals[i] = int32(i)
	}
	a, err := New(vals, atom.New(atom.Int32), Options{Chunklen: 4, Params: chunkenc.Override{Cname: "flate", Clevel: chunkenc.IntPtr(5)}})
	require.NoError(t, err)

	dst, err := a.Copy(&chunkenc.Override{Cname: "flate", Clevel: chunkenc.IntPtr(0), Shuffle: chunkenc.BoolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, 0, dst.Params().Clevel)
	require.False(t, dst.Params().Shuffle)
	got, err := dst.GetSlice(0, 10, 1)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}
