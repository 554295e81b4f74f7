// Package chunkstore implements C3 (spec.md §4.3): the ordered sequence of
// chunks backing a BArray, either an owned in-memory vector or an on-disk
// directory with one file per chunk. Both backends share the identical
// {Len, Append, Read, Replace, Truncate} interface so pkg/barray never
// branches on memory-vs-disk.
package chunkstore

import "github.com/ContinuumIO/blz/pkg/chunkenc"

// Store is the interface spec.md §4.3 names: "{len, append(chunk), read(i),
// replace(i, chunk), truncate(newlen)}."
type Store interface {
	// Len returns the number of full chunks currently owned.
	Len() int
	// Append adds a new full chunk at the end.
	Append(c *chunkenc.Chunk) error
	// Read returns the chunk at ordinal i.
	Read(i int) (*chunkenc.Chunk, error)
	// Replace swaps the chunk at ordinal i for c.
	Replace(i int, c *chunkenc.Chunk) error
	// Truncate drops every chunk at ordinal >= newlen.
	Truncate(newlen int) error
	// Flush persists any buffered state (no-op for the memory backend).
	Flush() error
	// Close releases any held resources (file handles, locks).
	Close() error
}
