// Package toc implements the fixed 8-byte file header, the 8-byte TOC
// header, and the per-variant FileEntry/Block codecs. The headers, blocks,
// and Standard/NoHash entries are bit-packed MSB-first via internal/bitpack;
// FileSize64 entries are byte-aligned little-endian fields.
package toc

import (
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/bitpack"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// Bit widths for the FileHeader. 26 bits of real fields leave
// 38 reserved/padding bits to fill the fixed 8-byte preface.
const (
	fileHeaderFormatVersionBits   = 8
	fileHeaderPageCountBits       = 8
	fileHeaderChunkSizeLog2Bits   = 8
	fileHeaderHasDictionaryBits   = 1
	fileHeaderHasUserDataBits     = 1
	fileHeaderReservedBits        = 64 - fileHeaderFormatVersionBits - fileHeaderPageCountBits -
		fileHeaderChunkSizeLog2Bits - fileHeaderHasDictionaryBits - fileHeaderHasUserDataBits
)

// FileHeader is the fixed 8-byte preface at the start of every archive. It
// is the only part of the format whose interpretation does not depend on
// FormatVersion — FormatVersion itself lives here.
type FileHeader struct {
	FormatVersion   format.FormatVersion
	HeaderPageCount uint8
	ChunkSizeLog2   uint8
	HasDictionary   bool
	HasUserData     bool
}

// Encode serializes h into format.FileHeaderSize bytes.
func (h FileHeader) Encode() []byte {
	w := bitpack.NewWriter()
	w.WriteBits(uint64(h.FormatVersion), fileHeaderFormatVersionBits)
	w.WriteBits(uint64(h.HeaderPageCount), fileHeaderPageCountBits)
	w.WriteBits(uint64(h.ChunkSizeLog2), fileHeaderChunkSizeLog2Bits)
	w.WriteBits(boolBit(h.HasDictionary), fileHeaderHasDictionaryBits)
	w.WriteBits(boolBit(h.HasUserData), fileHeaderHasUserDataBits)
	w.WriteBits(0, fileHeaderReservedBits)

	return w.Bytes()
}

// DecodeFileHeader parses the fixed 8-byte file header.
func DecodeFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < format.FileHeaderSize {
		return FileHeader{}, errs.ErrMalformedHeader
	}

	r := bitpack.NewReader(buf[:format.FileHeaderSize])

	formatVersion, err := r.ReadBits(fileHeaderFormatVersionBits)
	if err != nil {
		return FileHeader{}, err
	}
	pageCount, err := r.ReadBits(fileHeaderPageCountBits)
	if err != nil {
		return FileHeader{}, err
	}
	chunkLog2, err := r.ReadBits(fileHeaderChunkSizeLog2Bits)
	if err != nil {
		return FileHeader{}, err
	}
	hasDict, err := r.ReadBits(fileHeaderHasDictionaryBits)
	if err != nil {
		return FileHeader{}, err
	}
	hasUserData, err := r.ReadBits(fileHeaderHasUserDataBits)
	if err != nil {
		return FileHeader{}, err
	}

	return FileHeader{
		FormatVersion:   format.FormatVersion(formatVersion),
		HeaderPageCount: uint8(pageCount),
		ChunkSizeLog2:   uint8(chunkLog2),
		HasDictionary:   hasDict != 0,
		HasUserData:     hasUserData != 0,
	}, nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
