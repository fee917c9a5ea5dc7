// Package hash computes the XXH3-64 fingerprints used to identify file and
// dictionary content, seeded with zero and applied to decompressed bytes.
package hash

import (
	"io"

	"github.com/zeebo/xxh3"
)

// Sum64 computes the XXH3-64 hash of data, seeded with zero.
func Sum64(data []byte) uint64 {
	return xxh3.Hash(data)
}

// Sum64String computes the XXH3-64 hash of a string without an extra copy.
func Sum64String(s string) uint64 {
	return xxh3.HashString(s)
}

// Streaming wraps xxh3.Hasher for content read incrementally, e.g. a file
// copied through io.Copy while being hashed.
type Streaming struct {
	h *xxh3.Hasher
}

// NewStreaming creates a new zero-seeded streaming XXH3-64 hasher.
func NewStreaming() *Streaming {
	return &Streaming{h: xxh3.New()}
}

// Write implements io.Writer.
func (s *Streaming) Write(p []byte) (int, error) {
	return s.h.Write(p)
}

// Sum64 returns the accumulated hash without resetting the hasher.
func (s *Streaming) Sum64() uint64 {
	return s.h.Sum64()
}

// Reset clears the hasher state for reuse, avoiding a fresh allocation per file.
func (s *Streaming) Reset() {
	s.h.Reset()
}

var _ io.Writer = (*Streaming)(nil)
