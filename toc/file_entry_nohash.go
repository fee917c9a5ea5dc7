package toc

import "github.com/Sewer56/sewer56-archives-nx/internal/bitpack"

// Bit widths for the no-hash FileEntry preset: identical to the standard
// preset minus the 64-bit hash field. 32+24+20+20 = 96 bits = 12 bytes.
const noHashEntrySize = 12

type noHashCodec struct{}

var _ EntryCodec = noHashCodec{}

func (noHashCodec) EntrySize() int { return noHashEntrySize }

func (noHashCodec) Encode(e FileEntry) []byte {
	w := bitpack.NewWriter()
	w.WriteBits(e.DecompressedSize, stdDecompressedSizeBits)
	w.WriteBits(e.DecompressedBlockOffset, stdBlockOffsetBits)
	w.WriteBits(uint64(e.FirstBlockIndex), stdFirstBlockBits)
	w.WriteBits(uint64(e.PathIndex), stdPathIndexBits)

	return w.Bytes()
}

func (noHashCodec) Decode(buf []byte) (FileEntry, error) {
	r := bitpack.NewReader(buf[:noHashEntrySize])

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
		HasHash:                 false,
		DecompressedSize:        size,
		DecompressedBlockOffset: offset,
		FirstBlockIndex:         uint32(firstBlock),
		PathIndex:               uint32(pathIndex),
	}, nil
}
