package blz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/eval"
)

func TestZerosOnesFillArange(t *testing.T) {
	z, err := Zeros(5, atom.New(atom.Int32), Options{})
	require.NoError(t, err)
	require.Equal(t, 5, z.Len())

	o, err := Ones(5, atom.New(atom.Float64), Options{})
	require.NoError(t, err)
	v, err := o.Get(0)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)

	f, err := Fill(3, atom.New(atom.Int8), int8(9), Options{})
	require.NoError(t, err)
	v2, err := f.Get(0)
	require.NoError(t, err)
	require.Equal(t, int8(9), v2)

	a, err := Arange(0, 10, 1, atom.New(atom.Int64), Options{})
	require.NoError(t, err)
	require.Equal(t, 10, a.Len())
}

func TestEvalAndWhereBlocks(t *testing.T) {
	x, err := Arange(0, 10, 1, atom.New(atom.Int64), Options{Chunklen: 4})
	require.NoError(t, err)
	y, err := Arange(0, 20, 2, atom.New(atom.Int64), Options{Chunklen: 4})
	require.NoError(t, err)

	bindings := map[string]eval.Array{"x": x, "y": y}
	result, err := Eval("x + y", bindings, nil)
	require.NoError(t, err)
	require.Equal(t, 10, result.Len())
	v, err := result.Get(3)
	require.NoError(t, err)
	require.Equal(t, int64(9), v)

	positions, err := WhereBlocks("x >= y", bindings, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []int{0}, positions)
}

func TestOpenRoundTrip(t *testing.T) {
	dir := t.TempDir() + "/arr"
	a, err := New([]atom.Scalar{int32(1), int32(2), int32(3)}, atom.New(atom.Int32), Options{Chunklen: 2, Rootdir: dir})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := Open(dir, "r")
	require.NoError(t, err)
	require.Equal(t, 3, reopened.Len())
}

func TestWalkFindsContainers(t *testing.T) {
	root := t.TempDir()
	a, err := New([]atom.Scalar{int32(1)}, atom.New(atom.Int32), Options{Rootdir: filepath.Join(root, "one")})
	require.NoError(t, err)
	require.NoError(t, a.Close())
	b, err := New([]atom.Scalar{int32(2)}, atom.New(atom.Int32), Options{Rootdir: filepath.Join(root, "nested", "two")})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	found, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestSetAndGetNThreads(t *testing.T) {
	SetNThreads(4)
	require.Equal(t, 4, NThreads())
	SetNThreads(0) // clamps to 1
	require.Equal(t, 1, NThreads())
	SetNThreads(len(os.Environ()) + 1) // just exercise a larger value without hardcoding
	require.Greater(t, NThreads(), 0)
}
