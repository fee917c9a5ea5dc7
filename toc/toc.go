package toc

import "github.com/Sewer56/sewer56-archives-nx/internal/errs"

// Region is the fully parsed table of contents: the header, decoded file and
// block entry arrays, and the still-compressed string pool bytes. The string pool is left compressed here — decoding it is
// stringpool's job, kept out of this package so a caller that only needs
// entry/block metadata (e.g. a dictionary-rebuild tool) never pays for pool
// decompression.
type Region struct {
	Header               Header
	Entries              []FileEntry
	Blocks               []Block
	StringPoolCompressed []byte
}

// Decode parses a complete TOC region: the 8-byte header, the FileEntry
// array, the Block array, and the compressed string pool that follows them.
// buf must start at the TOC header's file offset and extend at least
// through the end of the string pool.
func Decode(buf []byte) (Region, error) {
	header, err := DecodeHeader(buf)
	if err != nil {
		return Region{}, err
	}

	entryCodec, err := CodecFor(header.Variant)
	if err != nil {
		return Region{}, err
	}

	off := tocHeaderEncodedSize
	entriesSize := int(header.FileCount) * entryCodec.EntrySize()
	if off+entriesSize > len(buf) {
		return Region{}, errs.ErrMalformedHeader
	}

	entries, err := DecodeEntries(entryCodec, buf[off:off+entriesSize], header.FileCount)
	if err != nil {
		return Region{}, err
	}
	off += entriesSize

	blocksSize := int(header.BlockCount) * BlockEntrySize
	if off+blocksSize > len(buf) {
		return Region{}, errs.ErrMalformedHeader
	}

	blocks, err := DecodeBlocks(buf[off:off+blocksSize], header.BlockCount)
	if err != nil {
		return Region{}, err
	}
	off += blocksSize

	poolSize := int(header.StringPoolCompressedSize)
	if off+poolSize > len(buf) {
		return Region{}, errs.ErrMalformedHeader
	}

	return Region{
		Header:               header,
		Entries:              entries,
		Blocks:               blocks,
		StringPoolCompressed: buf[off : off+poolSize],
	}, nil
}

// tocHeaderEncodedSize duplicates format.TocHeaderSize as a local constant;
// toc_header_test.go asserts that the two match.
const tocHeaderEncodedSize = 8

// Encode serializes a complete TOC region: header, entries, blocks, followed
// by the already-compressed string pool bytes the caller supplies. The
// caller (pack.PackTo) is responsible for having set
// Header.StringPoolCompressedSize to len(pool) beforehand.
func Encode(header Header, entryCodec EntryCodec, entries []FileEntry, blocks []Block, pool []byte) []byte {
	out := make([]byte, 0, tocHeaderEncodedSize+len(entries)*entryCodec.EntrySize()+len(blocks)*BlockEntrySize+len(pool))
	out = append(out, header.Encode()...)
	out = append(out, EncodeEntries(entryCodec, entries)...)
	out = append(out, EncodeBlocks(blocks)...)
	out = append(out, pool...)

	return out
}
