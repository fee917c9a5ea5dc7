package toc

import (
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/bitpack"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// Bit widths for the 8-byte TOC header of the preset variants this build
// supports. The discriminant alone is read first so an
// unsupported variant can be rejected before the rest of the header is
// interpreted under the wrong layout.
const (
	tocHeaderDiscriminantBits = 3
	tocHeaderFileCountBits    = 20
	tocHeaderBlockCountBits   = 20
	tocHeaderPoolSizeBits     = 21
)

// Header is the 8-byte TOC discriminant header shared by every supported
// preset variant. The flexible variant (format.TocFlexible)
// and the tiny preset (format.TocPresetTiny) use a different layout and are
// rejected by DecodeHeader before this struct is populated.
type Header struct {
	Variant                  format.TocVariant
	FileCount                uint32
	BlockCount               uint32
	StringPoolCompressedSize uint32
}

// Encode serializes h into format.TocHeaderSize bytes.
func (h Header) Encode() []byte {
	w := bitpack.NewWriter()
	w.WriteBits(uint64(h.Variant), tocHeaderDiscriminantBits)
	w.WriteBits(uint64(h.FileCount), tocHeaderFileCountBits)
	w.WriteBits(uint64(h.BlockCount), tocHeaderBlockCountBits)
	w.WriteBits(uint64(h.StringPoolCompressedSize), tocHeaderPoolSizeBits)

	return w.Bytes()
}

// PeekVariant reads just the discriminant field, without requiring the rest
// of the header to match this build's preset layout. Used to decide whether
// DecodeHeader can proceed or whether the archive should be rejected with
// ErrUnsupportedTocVersion before any preset-specific field is parsed.
func PeekVariant(buf []byte) (format.TocVariant, error) {
	if len(buf) < format.TocHeaderSize {
		return 0, errs.ErrMalformedHeader
	}

	r := bitpack.NewReader(buf[:format.TocHeaderSize])
	v, err := r.ReadBits(tocHeaderDiscriminantBits)
	if err != nil {
		return 0, err
	}

	return format.TocVariant(v), nil
}

// DecodeHeader parses the 8-byte TOC header for one of the supported preset
// variants. Callers must have already confirmed via PeekVariant (or
// FileHeader.FormatVersion) that the archive uses a layout this build
// understands.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < format.TocHeaderSize {
		return Header{}, errs.ErrMalformedHeader
	}

	r := bitpack.NewReader(buf[:format.TocHeaderSize])

	variant, err := r.ReadBits(tocHeaderDiscriminantBits)
	if err != nil {
		return Header{}, err
	}
	if !format.TocVariant(variant).Supported() {
		return Header{}, errs.ErrUnsupportedTocVersion
	}

	fileCount, err := r.ReadBits(tocHeaderFileCountBits)
	if err != nil {
		return Header{}, err
	}
	blockCount, err := r.ReadBits(tocHeaderBlockCountBits)
	if err != nil {
		return Header{}, err
	}
	poolSize, err := r.ReadBits(tocHeaderPoolSizeBits)
	if err != nil {
		return Header{}, err
	}

	return Header{
		Variant:                  format.TocVariant(variant),
		FileCount:                uint32(fileCount),
		BlockCount:               uint32(blockCount),
		StringPoolCompressedSize: uint32(poolSize),
	}, nil
}
