// Package dict implements the optional per-extension ZStandard dictionary
// section: training, the block→dictionary run-length mapping, and
// lookup/decode.
package dict

import (
	"sort"

	"github.com/Sewer56/sewer56-archives-nx/endian"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/hash"
)

// Mapping is one run-length entry: block_run_len consecutive blocks
// (starting immediately after the previous mapping's run) use dictionary
// DictIndex.
type Mapping struct {
	DictIndex   uint8
	BlockRunLen uint8
}

// Section is the fully decoded DictionarySection.
type Section struct {
	Mappings []Mapping
	Sizes    []uint32
	Hashes   []uint64 // nil if the section was trained without hashes
	Payload  []byte   // concatenated raw dictionary bytes, Sizes[i] each
}

// DefaultTrainedDictSize is the default per-dictionary training target size,
// in bytes.
const DefaultTrainedDictSize = 110 * 1024

// sectionHeaderSize is the 8-byte-aligned header preceding the payload.
// Layout: NumDictionaries u8, NumMappings u8, HasHashes u8, 5 bytes
// reserved.
const sectionHeaderSize = 8

// NumDictionaries returns the distinct dictionary count, derived from Sizes
// rather than stored redundantly.
func (s Section) NumDictionaries() int { return len(s.Sizes) }

// Encode serializes a Section to its on-disk bytes.
func Encode(s Section) ([]byte, error) {
	if len(s.Sizes) > format.MaxDictionaries {
		return nil, errs.NewMalformedArchive("dictionary count %d exceeds max %d", len(s.Sizes), format.MaxDictionaries)
	}
	if len(s.Mappings) > 255 {
		return nil, errs.NewMalformedArchive("mapping count %d exceeds 255", len(s.Mappings))
	}

	eng := endian.Engine()

	header := make([]byte, sectionHeaderSize)
	header[0] = uint8(len(s.Sizes))
	header[1] = uint8(len(s.Mappings))
	if s.Hashes != nil {
		header[2] = 1
	}

	out := make([]byte, 0, sectionHeaderSize+len(s.Mappings)*2+len(s.Sizes)*4+len(s.Hashes)*8+len(s.Payload))
	out = append(out, header...)

	for _, m := range s.Mappings {
		out = append(out, m.DictIndex, m.BlockRunLen)
	}

	for _, sz := range s.Sizes {
		buf := make([]byte, 4)
		eng.PutUint32(buf, sz)
		out = append(out, buf...)
	}

	if s.Hashes != nil {
		for _, h := range s.Hashes {
			buf := make([]byte, 8)
			eng.PutUint64(buf, h)
			out = append(out, buf...)
		}
	}

	out = append(out, s.Payload...)

	return out, nil
}

// Decode parses a complete DictionarySection from buf.
func Decode(buf []byte) (Section, error) {
	if len(buf) < sectionHeaderSize {
		return Section{}, errs.ErrMalformedHeader
	}

	numDict := int(buf[0])
	numMappings := int(buf[1])
	hasHashes := buf[2] != 0

	off := sectionHeaderSize
	eng := endian.Engine()

	mappings := make([]Mapping, numMappings)
	for i := range mappings {
		if off+2 > len(buf) {
			return Section{}, errs.ErrMalformedHeader
		}
		mappings[i] = Mapping{DictIndex: buf[off], BlockRunLen: buf[off+1]}
		off += 2
	}

	sizes := make([]uint32, numDict)
	for i := range sizes {
		if off+4 > len(buf) {
			return Section{}, errs.ErrMalformedHeader
		}
		sizes[i] = eng.Uint32(buf[off : off+4])
		off += 4
	}

	var hashes []uint64
	if hasHashes {
		hashes = make([]uint64, numDict)
		for i := range hashes {
			if off+8 > len(buf) {
				return Section{}, errs.ErrMalformedHeader
			}
			hashes[i] = eng.Uint64(buf[off : off+8])
			off += 8
		}
	}

	totalPayload := 0
	for _, sz := range sizes {
		totalPayload += int(sz)
	}
	if off+totalPayload > len(buf) {
		return Section{}, errs.ErrMalformedHeader
	}

	return Section{
		Mappings: mappings,
		Sizes:    sizes,
		Hashes:   hashes,
		Payload:  buf[off : off+totalPayload],
	}, nil
}

// DictionaryBytes returns the raw trained dictionary bytes for dictIndex
// (its position in Sizes/Payload), verifying its hash if the section
// carries one.
func (s Section) DictionaryBytes(dictIndex uint8) ([]byte, error) {
	if int(dictIndex) >= len(s.Sizes) {
		return nil, errs.ErrUnknownDictionaryIdx
	}

	start := 0
	for i := 0; i < int(dictIndex); i++ {
		start += int(s.Sizes[i])
	}
	end := start + int(s.Sizes[dictIndex])

	raw := s.Payload[start:end]

	if s.Hashes != nil {
		if got := hash.Sum64(raw); got != s.Hashes[dictIndex] {
			return nil, errs.NewMalformedArchive("dictionary %d content hash mismatch", dictIndex)
		}
	}

	return raw, nil
}

// Bounds precomputes the accumulated run-length boundaries for mappings,
// once per Section, so repeated ForBlock lookups against the same table
// amortize to O(log N) instead of rebuilding the boundary slice on every
// call.
func Bounds(mappings []Mapping) []uint32 {
	bounds := make([]uint32, len(mappings))

	var accumulated uint32
	for i, m := range mappings {
		accumulated += uint32(m.BlockRunLen)
		bounds[i] = accumulated
	}

	return bounds
}

// ForBlock binary-searches bounds (as returned by Bounds(mappings)) to find
// which dictionary index covers blockIndex in O(log N) comparisons.
// format.NoDictionary means "no dictionary, decode raw".
func ForBlock(bounds []uint32, mappings []Mapping, blockIndex uint32) (uint8, error) {
	idx := sort.Search(len(bounds), func(i int) bool { return blockIndex < bounds[i] })
	if idx == len(bounds) {
		return 0, errs.ErrUnknownDictionaryIdx
	}

	return mappings[idx].DictIndex, nil
}
