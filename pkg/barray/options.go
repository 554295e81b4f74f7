// Package barray implements C4, spec.md §4.4: BArray, the compressed
// chunked homogeneous-dtype array, in memory or rooted at a directory,
// built from pkg/chunkenc's Chunk/Params and pkg/chunkstore's Store.
package barray

import "github.com/ContinuumIO/blz/pkg/chunkenc"

const (
	targetChunkBytes = 256 * 1024
	minChunkItems     = 16
	maxChunkItems     = 1 << 20
)

// DefaultChunklen is spec.md §4.4's chunklen heuristic: target a raw chunk
// size around 256KiB (an L2-cache-fraction figure, matching the teacher's
// own default block size), clamped to [16, 2^20] items.
func DefaultChunklen(itemsize int) int {
	if itemsize <= 0 {
		itemsize = 1
	}
	n := targetChunkBytes / itemsize
	if n < minChunkItems {
		n = minChunkItems
	}
	if n > maxChunkItems {
		n = maxChunkItems
	}
	return n
}

// Options configures a BArray factory call. The zero value means: pick
// the chunklen heuristic, use chunkenc.DefaultParams, keep the array in
// memory, and default the array's fill value to its dtype's zero value.
// Params is an Override, not a resolved Params, so a caller can request
// clevel 0 or shuffle off explicitly (chunkenc.IntPtr/BoolPtr) without it
// being silently defaulted away.
type Options struct {
	Chunklen int
	Params   chunkenc.Override
	Rootdir  string
	Dflt     interface{}
}
