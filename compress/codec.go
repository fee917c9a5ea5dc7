// Package compress implements the Nx compressor façade: a
// uniform interface over Copy, LZ4, ZStandard (in its magic-less framing),
// BZip3, and this module's LZMA extension, dispatched by the 3-bit
// format.CompressionTag stored in each block entry.
package compress

import (
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// Compressor compresses a decompressed block payload, optionally against a
// trained dictionary.
type Compressor interface {
	// Compress returns the compressed bytes for data at the given level.
	// dict may be nil. The returned slice is newly allocated.
	Compress(data []byte, level int, dict []byte) ([]byte, error)
}

// Decompressor decompresses a block payload back to its original bytes.
// expectedSize is the decompressed size the caller computes from the owning
// FileEntry/Block metadata: Copy and LZMA require it exact, LZ4 uses it as
// an upper bound, and ZStandard uses it only to pre-size its output buffer.
type Decompressor interface {
	Decompress(data []byte, expectedSize int, dict []byte) ([]byte, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// ForTag returns the Codec implementing the given compression tag, or
// ErrUnknownCompressionTag if the tag is unrecognized. Every tag up to
// format.MaxCompressionTag has a Codec; the BZip3 one returns a
// CompressionError from Compress and Decompress.
func ForTag(tag format.CompressionTag) (Codec, error) {
	codec, ok := registry[tag]
	if !ok {
		return nil, errs.ErrUnknownCompressionTag
	}

	return codec, nil
}

var registry = map[format.CompressionTag]Codec{
	format.CompressionCopy:  copyCodec{},
	format.CompressionZStd:  zstdCodec{},
	format.CompressionLZ4:   lz4Codec{},
	format.CompressionBZip3: bzip3Codec{},
	format.CompressionLZMA:  lzmaCodec{},
}

// wrapErr reports a backend failure uniformly as errs.CompressionError.
func wrapErr(algo string, err error) error {
	return errs.NewCompressionError(algo, err)
}
