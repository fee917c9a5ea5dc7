// Package errs defines the error taxonomy shared by every Nx archive package.
//
// Most errors are plain sentinel values created with errors.New so callers
// can compare with errors.Is. A handful of errors carry parameters (a block
// index, a path, a wrapped backend error) and are modeled as structs
// implementing the error interface, so callers can errors.As into them to
// recover the parameter.
package errs

import (
	"errors"
	"fmt"
)

// Fatal-for-the-archive errors. None of these carry partial data;
// callers must treat the archive as unusable.
var (
	ErrMalformedHeader       = errors.New("nx: malformed file header")
	ErrUnsupportedFormat     = errors.New("nx: unsupported archive format version")
	ErrUnsupportedTocVersion = errors.New("nx: unsupported table-of-contents variant")
	ErrMalformedStringPool   = errors.New("nx: malformed string pool")
	ErrUnknownDictionaryMode = errors.New("nx: dictionary section present but flag not set")
)

// Fatal-for-the-block errors. Archive.Extract reports these per entry in
// ExtractResult.Err and carries on with the other entries; it has no mode
// that fails the whole call on the first one.
var (
	ErrUnknownCompressionTag = errors.New("nx: unrecognized compression tag")
	ErrUnknownDictionaryIdx  = errors.New("nx: dictionary index out of range")
)

// ErrCancelled is returned by pack.Execute when its context is cancelled
// before a block starts. No partial output is kept. Archive.Extract takes no
// cancellation signal.
var ErrCancelled = errors.New("nx: operation cancelled")

// ErrEmptyPath is returned when the planner is given a zero-length path.
var ErrEmptyPath = errors.New("nx: file path must not be empty")

// InvalidConfig reports a rejected pack.Config field, naming the field and
// why it was rejected rather than silently coercing it.
type InvalidConfig struct {
	Field  string
	Reason string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("nx: invalid config field %s: %s", e.Field, e.Reason)
}

// NewInvalidConfig constructs an InvalidConfig for field with a formatted reason.
func NewInvalidConfig(field, format string, args ...any) *InvalidConfig {
	return &InvalidConfig{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrNotReady is returned when an Archive method that requires state Ready is
// called before the open sequence has completed successfully.
var ErrNotReady = errors.New("nx: archive not in Ready state")

// MalformedArchive reports a hardened-mode structural validation failure.
// Always fatal for the archive.
type MalformedArchive struct {
	Reason string
}

func (e *MalformedArchive) Error() string {
	return fmt.Sprintf("nx: malformed archive: %s", e.Reason)
}

// NewMalformedArchive constructs a MalformedArchive with a formatted reason.
func NewMalformedArchive(format string, args ...any) *MalformedArchive {
	return &MalformedArchive{Reason: fmt.Sprintf(format, args...)}
}

// CompressionError wraps a backend compressor/decompressor failure together
// with the algorithm tag that produced it.
type CompressionError struct {
	Algo  string
	Inner error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("nx: %s codec error: %v", e.Algo, e.Inner)
}

func (e *CompressionError) Unwrap() error { return e.Inner }

// NewCompressionError wraps inner with the algorithm name that produced it.
// Returns nil if inner is nil, so callers can write
// `if err := c.Decompress(...); err != nil { return NewCompressionError(...) }`.
func NewCompressionError(algo string, inner error) error {
	if inner == nil {
		return nil
	}

	return &CompressionError{Algo: algo, Inner: inner}
}

// HashMismatch is raised only when opt-in hash verification is enabled at
// unpack time and the recomputed XXH3-64 does not match the stored hash.
type HashMismatch struct {
	Path string
	Want uint64
	Got  uint64
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("nx: hash mismatch for %q: want %#016x, got %#016x", e.Path, e.Want, e.Got)
}

// BlockCompressionError reports which block a parallel pack/unpack task was
// working on when it failed.
type BlockCompressionError struct {
	BlockIndex uint32
	Inner      error
}

func (e *BlockCompressionError) Error() string {
	return fmt.Sprintf("nx: block %d failed: %v", e.BlockIndex, e.Inner)
}

func (e *BlockCompressionError) Unwrap() error { return e.Inner }

// IoError wraps an underlying storage error with the operation kind that
// triggered it (e.g. "read", "mmap", "rename"). Propagation policy is
// identical to the other fatal error types in this package.
type IoError struct {
	Kind  string
	Inner error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("nx: io error during %s: %v", e.Kind, e.Inner)
}

func (e *IoError) Unwrap() error { return e.Inner }

// NewIoError wraps inner with the operation kind. Returns nil if inner is nil.
func NewIoError(kind string, inner error) error {
	if inner == nil {
		return nil
	}

	return &IoError{Kind: kind, Inner: inner}
}
