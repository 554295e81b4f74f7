package persist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

func TestMetaRoundTrip(t *testing.T) {
	params, err := chunkenc.NewParams(chunkenc.Override{Cname: "lz4", Clevel: chunkenc.IntPtr(3)})
	require.NoError(t, err)

	m := Meta{
		Dtype:    atom.New(atom.Int64),
		Chunklen: 4096,
		Len:      123456,
		Dflt:     make([]byte, 8),
		Params:   params,
	}
	enc := EncodeMeta(m)
	dec, err := DecodeMeta(enc)
	require.NoError(t, err)
	require.Equal(t, m.Chunklen, dec.Chunklen)
	require.Equal(t, m.Len, dec.Len)
	require.Equal(t, m.Params, dec.Params)
	require.Equal(t, m.Dtype.Kind, dec.Dtype.Kind)
}

func TestMetaCorruption(t *testing.T) {
	m := Meta{Dtype: atom.New(atom.Int32), Chunklen: 10, Len: 0, Dflt: make([]byte, 4), Params: chunkenc.DefaultParams}
	enc := EncodeMeta(m)
	enc[5] ^= 0xFF
	_, err := DecodeMeta(enc)
	require.Error(t, err)
}

func TestLeftoverRoundTrip(t *testing.T) {
	payload := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}
	enc := EncodeLeftover(3, payload)
	n, got, err := DecodeLeftover(enc, 4)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, payload, got)
}
