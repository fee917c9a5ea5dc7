// Package format defines the wire-level enums and size constants shared by
// every section of the Nx archive: the compression tag stored per block, the
// table-of-contents discriminant, and the page/chunk sizing rules.
package format

import "fmt"

// CompressionTag identifies the codec used to produce a block's compressed
// bytes. It is stored as a 3-bit field in each block entry, leaving room for
// the LZMA extension tag this module adds and three reserved values.
type CompressionTag uint8

const (
	// CompressionCopy stores the block byte-identical to its source.
	CompressionCopy CompressionTag = 0
	// CompressionZStd is Zstandard framing with the magic number stripped and
	// no checksum; the frame header's content-size and dictID fields are not
	// removed. The decoder also receives the decompressed size out of band.
	CompressionZStd CompressionTag = 1
	// CompressionLZ4 is raw LZ4 block framing.
	CompressionLZ4 CompressionTag = 2
	// CompressionBZip3 is BZip3 framing (see compress/bzip3.go for the
	// availability caveat: no pure-Go BZip3 binding was available, so this
	// tag is wired to a build-tag-gated backend).
	CompressionBZip3 CompressionTag = 3
	// CompressionLZMA is this module's extension of the façade beyond the
	// four tags its compression-tag catalog names explicitly — the 3-bit
	// tag field has room for a fifth backend, and LZMA is a natural fit
	// among the façade's backends despite not getting a reserved number.
	CompressionLZMA CompressionTag = 4
)

// MaxCompressionTag is the highest assigned tag value; 5, 6, 7 are reserved.
const MaxCompressionTag = CompressionLZMA

func (c CompressionTag) String() string {
	switch c {
	case CompressionCopy:
		return "Copy"
	case CompressionZStd:
		return "ZStandard"
	case CompressionLZ4:
		return "LZ4"
	case CompressionBZip3:
		return "BZip3"
	case CompressionLZMA:
		return "LZMA"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the tags this build recognizes.
func (c CompressionTag) Valid() bool {
	return c <= MaxCompressionTag
}

// TocVariant identifies which table-of-contents layout a FileHeader's TOC
// region uses. Cross-version detection relies on FileHeader.FormatVersion,
// never on the TOC header's own bits.
type TocVariant uint8

const (
	// TocFlexible is the "flexible 64" variant: field bit-widths for
	// FileCount, BlockCount, pool size, and decompressed block offset are
	// themselves encoded in the TOC header.
	TocFlexible TocVariant = 0
	// TocPresetStandard is the fixed-width 20-byte-entry preset with a hash
	// field; the minimum variant every implementation must support.
	TocPresetStandard TocVariant = 1
	// TocPresetNoHash is the preset that omits the per-file hash field.
	TocPresetNoHash TocVariant = 2
	// TocPresetFileSize64 is the preset with 64-bit decompressed file sizes.
	TocPresetFileSize64 TocVariant = 3
	// TocPresetTiny is the preset tuned for small, SOLID-less packages.
	TocPresetTiny TocVariant = 4
)

func (v TocVariant) String() string {
	switch v {
	case TocFlexible:
		return "Flexible"
	case TocPresetStandard:
		return "PresetStandard"
	case TocPresetNoHash:
		return "PresetNoHash"
	case TocPresetFileSize64:
		return "PresetFileSize64"
	case TocPresetTiny:
		return "PresetTiny"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(v))
	}
}

// Supported reports whether this build can parse the variant. An
// implementer may support a subset of variants — this build supports the
// standard preset (with hash) plus the no-hash and 64-bit-size presets, and
// cleanly rejects the flexible and tiny variants rather than misparsing them.
func (v TocVariant) Supported() bool {
	switch v {
	case TocPresetStandard, TocPresetNoHash, TocPresetFileSize64:
		return true
	default:
		return false
	}
}

// Sizing and alignment constants for the on-disk archive layout.
const (
	// PageSize is the section-alignment granularity: header+TOC, and each
	// block region, begin at file offsets that are multiples of PageSize.
	PageSize = 4096

	// FileHeaderSize is the fixed preface size in bytes.
	FileHeaderSize = 8

	// TocHeaderSize is the fixed TOC discriminant header size in bytes.
	TocHeaderSize = 8

	// MaxBlockCompressedSize is the largest value a block's compressed_size
	// field can hold: 29 bits, i.e. 512 MiB - 1.
	MaxBlockCompressedSize = (1 << 29) - 1

	// MinChunkSizeLog2 / MaxChunkSizeLog2 bound chunk_size_log2: chunk sizes
	// range from 512 B to 1 TiB.
	MinChunkSizeLog2 = 9  // 512 B
	MaxChunkSizeLog2 = 40 // 1 TiB

	// NoDictionary is the sentinel dictionary index meaning "no dictionary,
	// decode raw".
	NoDictionary = 255

	// MaxDictionaries is the largest number of trained dictionaries a
	// DictionarySection may carry (num_dictionaries is a u8, and 255 is
	// reserved for NoDictionary).
	MaxDictionaries = 254
)

// ChunkSizeFromLog2 converts a chunk_size_log2 header field into a byte count.
func ChunkSizeFromLog2(log2 uint8) uint64 {
	return uint64(1) << log2
}

// FormatVersion identifies the on-disk layout generation. Current builds
// emit FormatVersionCurrent and can parse it plus the legacy versions that
// map to a TocVariant this build Supported()s.
type FormatVersion uint8

const (
	FormatVersion0      FormatVersion = 0 // earliest version, flexible TOC only
	FormatVersionPreset FormatVersion = 1 // preset-coded TOC generation
	FormatVersionCurrent              = FormatVersionPreset
)
