package btable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/barray"
)

func seqCol(t *testing.T, n int, dtype atom.Atom) *barray.BArray {
	t.Helper()
	vals := make([]atom.Scalar, n)
	for i := range vals {
		switch dtype.Kind {
		case atom.Int32:
			vals[i] = int32(i)
		case atom.Float64:
			vals[i] = float64(i)
		default:
			t.Fatalf("unsupported dtype in test helper: %s", dtype.Kind)
		}
	}
	a, err := barray.New(vals, dtype, barray.Options{Chunklen: 4})
	require.NoError(t, err)
	return a
}

func TestFromArraysAutoNames(t *testing.T) {
	x := seqCol(t, 5, atom.New(atom.Int32))
	y := seqCol(t, 5, atom.New(atom.Float64))
	tbl, err := FromArrays([]*barray.BArray{x, y}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"f0", "f1"}, tbl.Names())
	require.Equal(t, 5, tbl.Len())
}

func TestFromArraysLengthMismatch(t *testing.T) {
	x := seqCol(t, 5, atom.New(atom.Int32))
	y := seqCol(t, 4, atom.New(atom.Float64))
	_, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.Error(t, err)
}

func TestGetRowAndRows(t *testing.T) {
	x := seqCol(t, 5, atom.New(atom.Int32))
	y := seqCol(t, 5, atom.New(atom.Float64))
	tbl, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)

	row, err := tbl.GetRow(2)
	require.NoError(t, err)
	require.Equal(t, int32(2), row["x"])
	require.Equal(t, float64(2), row["y"])

	rows, err := tbl.GetRows(1, 4, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int32(3), rows[2]["x"])
}

func TestAppendRow(t *testing.T) {
	x := seqCol(t, 3, atom.New(atom.Int32))
	y := seqCol(t, 3, atom.New(atom.Float64))
	tbl, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)

	require.NoError(t, tbl.Append(Row{"x": int32(99), "y": float64(9.9)}))
	require.Equal(t, 4, tbl.Len())
	row, err := tbl.GetRow(3)
	require.NoError(t, err)
	require.Equal(t, int32(99), row["x"])
	require.Equal(t, float64(9.9), row["y"])
}

func TestAppendMissingColumn(t *testing.T) {
	x := seqCol(t, 3, atom.New(atom.Int32))
	y := seqCol(t, 3, atom.New(atom.Float64))
	tbl, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)

	err = tbl.Append(Row{"x": int32(1)})
	require.Error(t, err)
}

func TestAddColAndDelCol(t *testing.T) {
	x := seqCol(t, 3, atom.New(atom.Int32))
	tbl, err := FromArrays([]*barray.BArray{x}, []string{"x"})
	require.NoError(t, err)

	y := seqCol(t, 3, atom.New(atom.Float64))
	require.NoError(t, tbl.AddCol(y, "y", -1))
	require.Equal(t, []string{"x", "y"}, tbl.Names())

	require.NoError(t, tbl.DelCol("x"))
	require.Equal(t, []string{"y"}, tbl.Names())
	_, ok := tbl.Column("x")
	require.False(t, ok)
}

func TestWhereAndGetExpr(t *testing.T) {
	x := seqCol(t, 10, atom.New(atom.Int32))
	y := seqCol(t, 10, atom.New(atom.Int32))
	tbl, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)

	rows, err := tbl.Where("x < 5", nil, 0, -1)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	require.Equal(t, int32(0), rows[0]["x"])
	require.Equal(t, int32(4), rows[4]["x"])

	rows2, err := tbl.GetExpr("x == y")
	require.NoError(t, err)
	require.Len(t, rows2, 10)
}

func TestEvalProducesBArray(t *testing.T) {
	x := seqCol(t, 10, atom.New(atom.Int32))
	y := seqCol(t, 10, atom.New(atom.Int32))
	tbl, err := FromArrays([]*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)

	result, err := tbl.Eval("x + y", nil)
	require.NoError(t, err)
	require.Equal(t, 10, result.Len())
	v, err := result.Get(5)
	require.NoError(t, err)
	require.Equal(t, int64(10), v)
}

func TestCreateAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir() + "/tbl"
	xOpts := barray.Options{Chunklen: 4, Rootdir: dir + "/x"}
	yOpts := barray.Options{Chunklen: 4, Rootdir: dir + "/y"}
	x, err := barray.New([]atom.Scalar{int32(1), int32(2), int32(3)}, atom.New(atom.Int32), xOpts)
	require.NoError(t, err)
	y, err := barray.New([]atom.Scalar{float64(1), float64(2), float64(3)}, atom.New(atom.Float64), yOpts)
	require.NoError(t, err)

	tbl, err := Create(dir, []*barray.BArray{x, y}, []string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, tbl.Close())

	reopened, err := Open(dir, "r")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, reopened.Names())
	require.Equal(t, 3, reopened.Len())
	row, err := reopened.GetRow(1)
	require.NoError(t, err)
	require.Equal(t, int32(2), row["x"])
	require.Equal(t, float64(2), row["y"])
}
