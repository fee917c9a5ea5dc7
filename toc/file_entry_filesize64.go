package toc

import "github.com/Sewer56/sewer56-archives-nx/endian"

// fileSize64EntrySize: Hash(u64) + DecompressedSize(u64) +
// DecompressedBlockOffset(u32) + FirstBlockIndex(u32) + PathIndex(u32) = 28
// bytes. Unlike the standard and no-hash presets, this variant's fields are
// byte-aligned rather than sub-byte bit-packed: it expands DecompressedSize
// to 64 bits to support archives with files larger than the 32-bit standard
// preset's ~4 GiB ceiling, and at that size the density win of bit-packing
// the remaining fields is marginal next to the simplicity of a flat
// binary.LittleEndian layout.
const fileSize64EntrySize = 28

type fileSize64Codec struct{}

var _ EntryCodec = fileSize64Codec{}

func (fileSize64Codec) EntrySize() int { return fileSize64EntrySize }

func (fileSize64Codec) Encode(e FileEntry) []byte {
	buf := make([]byte, fileSize64EntrySize)
	eng := endian.Engine()

	eng.PutUint64(buf[0:8], e.Hash)
	eng.PutUint64(buf[8:16], e.DecompressedSize)
	eng.PutUint32(buf[16:20], uint32(e.DecompressedBlockOffset))
	eng.PutUint32(buf[20:24], e.FirstBlockIndex)
	eng.PutUint32(buf[24:28], e.PathIndex)

	return buf
}

func (fileSize64Codec) Decode(buf []byte) (FileEntry, error) {
	eng := endian.Engine()

	return FileEntry{
		HasHash:                 true,
		Hash:                    eng.Uint64(buf[0:8]),
		DecompressedSize:        eng.Uint64(buf[8:16]),
		DecompressedBlockOffset: uint64(eng.Uint32(buf[16:20])),
		FirstBlockIndex:         eng.Uint32(buf[20:24]),
		PathIndex:               eng.Uint32(buf[24:28]),
	}, nil
}
