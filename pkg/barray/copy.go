package barray

import (
	"context"

	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

// Copy produces an independent BArray, batching the chunk-by-chunk
// re-encode across pkg/chunkenc.Parallel (itself golang.org/x/sync/errgroup
// bounded by the process-wide nthreads setting) whenever there's more than
// one chunk to redo, with or without an override (spec.md §4.4's Copy,
// SPEC_FULL.md §4.4).
func (a *BArray) Copy(override *chunkenc.Override) (*BArray, error) {
	p := a.params
	if override != nil {
		np, err := chunkenc.NewParams(*override)
		if err != nil {
			return nil, err
		}
		p = np
	}
	dstOverride := chunkenc.Override{Cname: p.Cname, Clevel: chunkenc.IntPtr(p.Clevel), Shuffle: chunkenc.BoolPtr(p.Shuffle)}
	dst, err := Zeros(0, a.dtype, Options{Chunklen: a.chunklen, Params: dstOverride, Dflt: a.dfltScalar})
	if err != nil {
		return nil, err
	}

	nChunks := a.store.Len()
	switch {
	case nChunks > 1:
		newChunks := make([]*chunkenc.Chunk, nChunks)
		err := chunkenc.Parallel(context.Background(), nChunks, func(i int) error {
			c, err := a.store.Read(i)
			if err != nil {
				return err
			}
			dense := make([]byte, c.NBytes())
			if err := c.DecompressInto(dense); err != nil {
				return err
			}
			nc, err := chunkenc.New(a.itemsize, dense, c.NItems(), a.dfltBytes, p)
			if err != nil {
				return err
			}
			newChunks[i] = nc
			return nil
		})
		if err != nil {
			return nil, err
		}
		itemsCopied := 0
		for _, nc := range newChunks {
			if err := dst.store.Append(nc); err != nil {
				return nil, err
			}
			itemsCopied += nc.NItems()
		}
		dst.length += itemsCopied

	case nChunks == 1:
		c, err := a.store.Read(0)
		if err != nil {
			return nil, err
		}
		dense := make([]byte, c.NBytes())
		if err := c.DecompressInto(dense); err != nil {
			return nil, err
		}
		nc, err := chunkenc.New(a.itemsize, dense, c.NItems(), a.dfltBytes, p)
		if err != nil {
			return nil, err
		}
		if err := dst.store.Append(nc); err != nil {
			return nil, err
		}
		dst.length += nc.NItems()
	}

	if a.leftoverItems > 0 {
		if err := dst.AppendDense(append([]byte(nil), a.leftover...)); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
