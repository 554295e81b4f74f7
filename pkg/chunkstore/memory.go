package chunkstore

import (
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

// MemoryStore is the in-memory backend: an owned, growable slice of chunks,
// nothing more. This is what a memory-only BArray (no rootdir) stores into.
type MemoryStore struct {
	chunks []*chunkenc.Chunk
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Len() int { return len(s.chunks) }

func (s *MemoryStore) Append(c *chunkenc.Chunk) error {
	s.chunks = append(s.chunks, c)
	return nil
}

func (s *MemoryStore) Read(i int) (*chunkenc.Chunk, error) {
	if i < 0 || i >= len(s.chunks) {
		return nil, blzerr.NewIndexError("chunkstore: index %d out of range [0,%d)", i, len(s.chunks))
	}
	return s.chunks[i], nil
}

func (s *MemoryStore) Replace(i int, c *chunkenc.Chunk) error {
	if i < 0 || i >= len(s.chunks) {
		return blzerr.NewIndexError("chunkstore: index %d out of range [0,%d)", i, len(s.chunks))
	}
	s.chunks[i] = c
	return nil
}

func (s *MemoryStore) Truncate(newlen int) error {
	if newlen < 0 || newlen > len(s.chunks) {
		return blzerr.NewValueError("chunkstore: truncate(%d) out of range [0,%d]", newlen, len(s.chunks))
	}
	for i := newlen; i < len(s.chunks); i++ {
		s.chunks[i] = nil
	}
	s.chunks = s.chunks[:newlen]
	return nil
}

func (s *MemoryStore) Flush() error { return nil }

func (s *MemoryStore) Close() error { return nil }
