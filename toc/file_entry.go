package toc

import (
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// FileEntry is the variant-independent logical view of one file's TOC entry.
// Hash is absent (HasHash == false, Hash == 0) in presets without a hash
// field — callers must check HasHash rather than treating a zero hash as
// "no hash".
type FileEntry struct {
	HasHash                 bool
	Hash                    uint64
	DecompressedSize        uint64
	DecompressedBlockOffset uint64
	PathIndex               uint32
	FirstBlockIndex         uint32
}

// EntryCodec encodes/decodes the fixed-size FileEntry array for one
// supported TOC variant.
type EntryCodec interface {
	// EntrySize is the fixed on-disk size, in bytes, of one entry.
	EntrySize() int
	Encode(e FileEntry) []byte
	Decode(buf []byte) (FileEntry, error)
}

// CodecFor returns the EntryCodec for a supported TocVariant, or
// ErrUnsupportedTocVersion.
func CodecFor(v format.TocVariant) (EntryCodec, error) {
	switch v {
	case format.TocPresetStandard:
		return standardCodec{}, nil
	case format.TocPresetNoHash:
		return noHashCodec{}, nil
	case format.TocPresetFileSize64:
		return fileSize64Codec{}, nil
	default:
		return nil, errs.ErrUnsupportedTocVersion
	}
}

// EncodeEntries serializes an ordered slice of FileEntry values with codec.
func EncodeEntries(codec EntryCodec, entries []FileEntry) []byte {
	out := make([]byte, 0, len(entries)*codec.EntrySize())
	for _, e := range entries {
		out = append(out, codec.Encode(e)...)
	}

	return out
}

// DecodeEntries parses count consecutive fixed-size FileEntry records.
func DecodeEntries(codec EntryCodec, buf []byte, count uint32) ([]FileEntry, error) {
	size := codec.EntrySize()
	entries := make([]FileEntry, count)

	for i := range entries {
		off := int(i) * size
		if off+size > len(buf) {
			return nil, errs.ErrMalformedHeader
		}

		e, err := codec.Decode(buf[off : off+size])
		if err != nil {
			return nil, err
		}

		entries[i] = e
	}

	return entries, nil
}
