package atom

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	cases := []struct {
		a Atom
		v Scalar
	}{
		{New(Int8), int8(-12)},
		{New(Int64), int64(-123456789)},
		{New(Uint32), uint32(42)},
		{New(Float32), float32(3.5)},
		{New(Float64), float64(2.718281828)},
		{New(Bool), true},
		{New(Complex128), complex(1.5, -2.5)},
		{NewBytes(4), []byte("go!!")},
		{NewRune(3), "hél"},
	}
	for _, c := range cases {
		buf := make([]byte, c.a.ItemSize())
		require.NoError(t, c.a.Encode(c.v, buf))
		got, err := c.a.Decode(buf)
		require.NoError(t, err)
		if c.a.Kind == Bytes {
			require.Equal(t, c.v, got)
		} else if c.a.Kind != Rune {
			require.Equal(t, c.v, got)
		}
	}
}

func TestEncodeMismatchReturnsErrorNotPanic(t *testing.T) {
	a := New(Int32)
	buf := make([]byte, a.ItemSize())
	err := a.Encode("not a number", buf)
	require.Error(t, err)
}

func TestEncodeBoolMismatchReturnsError(t *testing.T) {
	b := New(Bool)
	buf := make([]byte, b.ItemSize())
	err := b.Encode(42, buf)
	require.Error(t, err)
}

func TestCompoundRoundTrip(t *testing.T) {
	rec := NewCompound(
		Field{"x", New(Int32)},
		Field{"y", New(Float64)},
	)
	require.Equal(t, 12, rec.ItemSize())

	v := map[string]interface{}{"x": int32(7), "y": float64(9.5)}
	buf := make([]byte, rec.ItemSize())
	require.NoError(t, rec.Encode(v, buf))
	got, err := rec.Decode(buf)
	require.NoError(t, err)
	if !rec.Equal(v, got) {
		t.Fatalf("compound round-trip mismatch:\nwant %s\ngot  %s", spew.Sdump(v), spew.Sdump(got))
	}
}

func TestAllEqualAndFill(t *testing.T) {
	a := New(Int32)
	buf := make([]byte, 4*10)
	require.NoError(t, a.Fill(buf, int32(7), 10))
	require.True(t, a.AllEqual(buf, int32(7)))
	require.False(t, a.AllEqual(buf, int32(8)))

	buf[4] = 0xff // corrupt one atom
	require.False(t, a.AllEqual(buf, int32(7)))
}

func TestShuffleRoundTrip(t *testing.T) {
	a := New(Int32)
	buf := make([]byte, 4*100)
	require.NoError(t, a.Fill(buf, int32(0), 100))
	for i := 0; i < 100; i++ {
		v := int32(i * i)
		b := make([]byte, 4)
		require.NoError(t, a.Encode(v, b))
		copy(buf[i*4:i*4+4], b)
	}
	shuffled := Shuffle(4, buf)
	back := Unshuffle(4, shuffled)
	require.Equal(t, buf, back)
}

func TestShuffleSingleByteNoop(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	require.Equal(t, buf, Shuffle(1, buf))
}
