package toc

import "github.com/Sewer56/sewer56-archives-nx/internal/bitpack"

// Bit widths for the standard 20-byte FileEntry preset. 64+32+24+20+20 = 160 bits = 20 bytes exactly.
const (
	stdHashBits            = 64
	stdDecompressedSizeBits = 32
	stdBlockOffsetBits     = 24
	stdFirstBlockBits      = 20
	stdPathIndexBits       = 20

	standardEntrySize = 20
)

type standardCodec struct{}

var _ EntryCodec = standardCodec{}

func (standardCodec) EntrySize() int { return standardEntrySize }

func (standardCodec) Encode(e FileEntry) []byte {
	w := bitpack.NewWriter()
	w.WriteBits(e.Hash, stdHashBits)
	w.WriteBits(e.DecompressedSize, stdDecompressedSizeBits)
	w.WriteBits(e.DecompressedBlockOffset, stdBlockOffsetBits)
	w.WriteBits(uint64(e.FirstBlockIndex), stdFirstBlockBits)
	w.WriteBits(uint64(e.PathIndex), stdPathIndexBits)

	return w.Bytes()
}

func (standardCodec) Decode(buf []byte) (FileEntry, error) {
	r := bitpack.NewReader(buf[:standardEntrySize])

	hash, err := r.ReadBits(stdHashBits)
	if err != nil {
		return FileEntry{}, err
	}
	size, err := r.ReadBits(stdDecompressedSizeBits)
	if err != nil {
		return FileEntry{}, err
	}
	offset, err := r.ReadBits(stdBlockOffsetBits)
	if err != nil {
		return FileEntry{}, err
	}
	firstBlock, err := r.ReadBits(stdFirstBlockBits)
	if err != nil {
		return FileEntry{}, err
	}
	pathIndex, err := r.ReadBits(stdPathIndexBits)
	if err != nil {
		return FileEntry{}, err
	}

	return FileEntry{
		HasHash:                 true,
		Hash:                    hash,
		DecompressedSize:        size,
		DecompressedBlockOffset: offset,
		FirstBlockIndex:         uint32(firstBlock),
		PathIndex:               uint32(pathIndex),
	}, nil
}
