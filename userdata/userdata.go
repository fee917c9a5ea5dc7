// Package userdata implements the optional opaque payload section appended
// after the table of contents.
package userdata

import (
	"github.com/Sewer56/sewer56-archives-nx/compress"
	"github.com/Sewer56/sewer56-archives-nx/endian"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// sectionHeaderSize: DecompressedSize u32 + CompressedSize u32.
const sectionHeaderSize = 8

// Section is the decoded UserDataSection: opaque to the engine, carried
// purely so external collaborators can stash metadata alongside an archive
// (mod author, build ID, whatever the caller wants).
type Section struct {
	DecompressedSize uint32
	CompressedSize   uint32
	Payload          []byte // compressed bytes, exactly CompressedSize long
}

// Encode compresses payload and builds the on-disk section bytes.
func Encode(payload []byte, level int) ([]byte, error) {
	codec, err := compress.ForTag(format.CompressionZStd)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(payload, level, nil)
	if err != nil {
		return nil, err
	}

	eng := endian.Engine()
	header := make([]byte, sectionHeaderSize)
	eng.PutUint32(header[0:4], uint32(len(payload)))
	eng.PutUint32(header[4:8], uint32(len(compressed)))

	return append(header, compressed...), nil
}

// Decode parses a UserDataSection header and returns it with Payload
// pointing at the still-compressed bytes.
func Decode(buf []byte) (Section, error) {
	if len(buf) < sectionHeaderSize {
		return Section{}, errs.ErrMalformedHeader
	}

	eng := endian.Engine()
	decompressedSize := eng.Uint32(buf[0:4])
	compressedSize := eng.Uint32(buf[4:8])

	end := sectionHeaderSize + int(compressedSize)
	if end > len(buf) {
		return Section{}, errs.ErrMalformedHeader
	}

	return Section{
		DecompressedSize: decompressedSize,
		CompressedSize:   compressedSize,
		Payload:          buf[sectionHeaderSize:end],
	}, nil
}

// Decompress returns the original opaque payload bytes.
func (s Section) Decompress() ([]byte, error) {
	codec, err := compress.ForTag(format.CompressionZStd)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(s.Payload, int(s.DecompressedSize), nil)
}
