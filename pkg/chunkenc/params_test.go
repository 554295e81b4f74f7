package chunkenc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsDefaults(t *testing.T) {
	p, err := NewParams(Override{})
	require.NoError(t, err)
	require.Equal(t, DefaultParams, p)
}

func TestParamsOverride(t *testing.T) {
	p, err := NewParams(Override{Cname: "snappy"})
	require.NoError(t, err)
	require.Equal(t, "snappy", p.Cname)
	require.Equal(t, DefaultParams.Clevel, p.Clevel)
}

func TestParamsOverrideClevelZeroIsExplicit(t *testing.T) {
	p, err := NewParams(Override{Cname: "flate", Clevel: IntPtr(0)})
	require.NoError(t, err)
	require.Equal(t, 0, p.Clevel)
}

func TestParamsOverrideShuffleFalseIsExplicit(t *testing.T) {
	p, err := NewParams(Override{Cname: "flate", Shuffle: BoolPtr(false)})
	require.NoError(t, err)
	require.False(t, p.Shuffle)

	p, err = NewParams(Override{Cname: "flate"})
	require.NoError(t, err)
	require.True(t, p.Shuffle, "unset Shuffle should fall back to DefaultParams.Shuffle")
}

func TestParamsInvalidCname(t *testing.T) {
	_, err := NewParams(Override{Cname: "made-up"})
	require.Error(t, err)
}

func TestParamsInvalidClevel(t *testing.T) {
	_, err := NewParams(Override{Clevel: IntPtr(10), Cname: "flate"})
	require.Error(t, err)
}

func TestEffectiveShuffleDisabledForByteItems(t *testing.T) {
	p := Params{Shuffle: true}
	require.False(t, p.EffectiveShuffle(1))
	require.True(t, p.EffectiveShuffle(4))
}
