package chunkenc

import (
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// Params is the immutable codec configuration spec.md §4.1 describes:
// clevel (0..9), shuffle, and the compressor name. Construction validates
// cname against CompressorList() the way bcolz's bparams validates cname
// against blosc_compressor_list() (original_source/blz/bparams.py).
type Params struct {
	Clevel  int
	Shuffle bool
	Cname   string
}

// DefaultParams mirrors bcolz's bparams(clevel=5, shuffle=True, cname="blosclz")
// default, with "flate" standing in for the out-of-scope Blosc codec.
var DefaultParams = Params{Clevel: 5, Shuffle: true, Cname: "flate"}

// Override is the input to NewParams: a partial override of DefaultParams.
// A bare Params{} can't distinguish "leave this field at the default" from
// "explicitly request the zero value" — and spec §4.1 makes both Clevel 0
// ("store uncompressed") and Shuffle false first-class requests, not
// defaultable zero values. So Clevel and Shuffle are carried as pointers
// here: nil means "use the default," a non-nil pointer is taken verbatim
// even when it points at zero/false. Cname stays a plain string, since ""
// is never a registered compressor name and so unambiguously means "use
// the default."
type Override struct {
	Clevel  *int
	Shuffle *bool
	Cname   string
}

// IntPtr and BoolPtr build the pointer fields an Override literal needs,
// e.g. Override{Clevel: chunkenc.IntPtr(0)} to request clevel 0 explicitly.
func IntPtr(v int) *int    { return &v }
func BoolPtr(v bool) *bool { return &v }

// NewParams merges override onto DefaultParams field by field (no generic
// merge library: see Override's doc for why a zero-aware merge like mergo
// can't be used here) and validates the result.
func NewParams(override Override) (Params, error) {
	p := DefaultParams
	if override.Cname != "" {
		p.Cname = override.Cname
	}
	if override.Clevel != nil {
		p.Clevel = *override.Clevel
	}
	if override.Shuffle != nil {
		p.Shuffle = *override.Shuffle
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks clevel range and cname against the codec registry.
func (p Params) Validate() error {
	if p.Clevel < 0 || p.Clevel > 9 {
		return blzerr.NewValueError("clevel must be in 0..9, got %d", p.Clevel)
	}
	found := false
	for _, c := range CompressorList() {
		if c == p.Cname {
			found = true
			break
		}
	}
	if !found {
		return blzerr.NewValueError("compressor %q is not available in this build", p.Cname)
	}
	return nil
}

// EffectiveShuffle reports whether shuffling should actually be applied:
// spec.md §4.1 says "If itemsize == 1, the engine silently disables shuffle."
func (p Params) EffectiveShuffle(itemsize int) bool {
	return p.Shuffle && itemsize > 1
}
