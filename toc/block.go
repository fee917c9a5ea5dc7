package toc

import (
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/bitpack"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

const (
	blockCompressedSizeBits = 29
	blockCompressionBits    = 3
	// BlockEntrySize is the fixed on-disk size of one Block entry, 4 bytes
	// (29+3 bits), shared by every TOC variant.
	BlockEntrySize = 4
)

// Block is one entry of the TOC's block array. Block order
// equals serialization order of the compressed payload that follows the TOC.
type Block struct {
	CompressedSize uint32
	Compression    format.CompressionTag
}

// Encode serializes b into BlockEntrySize bytes. The caller must have
// already validated CompressedSize <= format.MaxBlockCompressedSize.
func (b Block) Encode() []byte {
	w := bitpack.NewWriter()
	w.WriteBits(uint64(b.CompressedSize), blockCompressedSizeBits)
	w.WriteBits(uint64(b.Compression), blockCompressionBits)

	return w.Bytes()
}

// DecodeBlock parses one Block entry from buf.
func DecodeBlock(buf []byte) (Block, error) {
	if len(buf) < BlockEntrySize {
		return Block{}, errs.ErrMalformedHeader
	}

	r := bitpack.NewReader(buf[:BlockEntrySize])

	size, err := r.ReadBits(blockCompressedSizeBits)
	if err != nil {
		return Block{}, err
	}
	tag, err := r.ReadBits(blockCompressionBits)
	if err != nil {
		return Block{}, err
	}

	return Block{
		CompressedSize: uint32(size),
		Compression:    format.CompressionTag(tag),
	}, nil
}

// EncodeBlocks serializes an ordered slice of Block entries.
func EncodeBlocks(blocks []Block) []byte {
	out := make([]byte, 0, len(blocks)*BlockEntrySize)
	for _, b := range blocks {
		out = append(out, b.Encode()...)
	}

	return out
}

// DecodeBlocks parses count consecutive Block entries from buf.
func DecodeBlocks(buf []byte, count uint32) ([]Block, error) {
	blocks := make([]Block, count)
	for i := range blocks {
		off := int(i) * BlockEntrySize
		if off+BlockEntrySize > len(buf) {
			return nil, errs.ErrMalformedHeader
		}

		block, err := DecodeBlock(buf[off:])
		if err != nil {
			return nil, err
		}

		blocks[i] = block
	}

	return blocks, nil
}
