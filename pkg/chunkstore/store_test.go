package chunkstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

func mkChunk(t *testing.T, fill byte, nitems int) *chunkenc.Chunk {
	t.Helper()
	dense := make([]byte, nitems*4)
	for i := range dense {
		dense[i] = fill
	}
	dflt := make([]byte, 4)
	c, err := chunkenc.New(4, dense, nitems, dflt, chunkenc.DefaultParams)
	require.NoError(t, err)
	return c
}

func testStoreBasics(t *testing.T, s Store) {
	require.Equal(t, 0, s.Len())

	c0 := mkChunk(t, 1, 8)
	c1 := mkChunk(t, 2, 8)
	require.NoError(t, s.Append(c0))
	require.NoError(t, s.Append(c1))
	require.Equal(t, 2, s.Len())

	got, err := s.Read(0)
	require.NoError(t, err)
	require.Equal(t, c0.NItems(), got.NItems())

	c2 := mkChunk(t, 3, 8)
	require.NoError(t, s.Replace(0, c2))
	got, err = s.Read(0)
	require.NoError(t, err)
	buf := make([]byte, got.NBytes())
	require.NoError(t, got.DecompressInto(buf))
	require.Equal(t, byte(3), buf[0])

	_, err = s.Read(5)
	require.Error(t, err)

	require.NoError(t, s.Truncate(1))
	require.Equal(t, 1, s.Len())
	require.Error(t, s.Truncate(5))

	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	testStoreBasics(t, NewMemoryStore())
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenDisk(dir, "w", 0)
	require.NoError(t, err)
	testStoreBasics(t, s)
}

func TestDiskStoreReadOnlyRejectsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenDisk(dir, "w", 0)
	require.NoError(t, err)
	require.NoError(t, w.Append(mkChunk(t, 1, 4)))
	require.NoError(t, w.Close())

	r, err := OpenDisk(dir, "r", 1)
	require.NoError(t, err)
	err = r.Append(mkChunk(t, 2, 4))
	require.Error(t, err)
	_, ok := err.(interface{ Error() string })
	require.True(t, ok)
}

func TestDiskStoreDoubleOpenLocked(t *testing.T) {
	dir := t.TempDir()
	w1, err := OpenDisk(dir, "w", 0)
	require.NoError(t, err)
	defer w1.Close()

	_, err = OpenDisk(dir, "a", 0)
	require.Error(t, err)
}
