package pack

import (
	"bytes"
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/dict"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/toc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleLayout(t *testing.T) Layout {
	t.Helper()

	codec, err := toc.CodecFor(format.TocPresetStandard)
	require.NoError(t, err)

	header := toc.Header{
		Variant:                  format.TocPresetStandard,
		FileCount:                1,
		BlockCount:               1,
		StringPoolCompressedSize: 4,
	}
	entries := []toc.FileEntry{
		{HasHash: true, Hash: 1, DecompressedSize: 5, DecompressedBlockOffset: 0, PathIndex: 0, FirstBlockIndex: 0},
	}
	blocks := []toc.Block{
		{CompressedSize: 5, Compression: format.CompressionCopy},
	}
	pool := []byte("abcd")

	return Layout{
		FileHeader: toc.FileHeader{FormatVersion: format.FormatVersionCurrent, HeaderPageCount: 1, ChunkSizeLog2: 20},
		TocBytes:   toc.Encode(header, codec, entries, blocks, pool),
		CompressedBlocks: []CompressedBlock{
			{BlockIndex: 0, CompressedSize: 5, Compression: uint8(format.CompressionCopy), Bytes: []byte("hello")},
		},
	}
}

func TestWritePadsBlocksToPageBoundary(t *testing.T) {
	l := simpleLayout(t)

	var buf bytes.Buffer
	n, err := Write(&buf, l)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
	assert.Equal(t, 0, buf.Len()%format.PageSize, "final written size must be page-aligned")
}

func TestWriteSectionOrderHeaderThenToc(t *testing.T) {
	l := simpleLayout(t)

	var buf bytes.Buffer
	_, err := Write(&buf, l)
	require.NoError(t, err)

	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), format.FileHeaderSize+format.TocHeaderSize)

	decodedHeader, err := toc.DecodeFileHeader(data[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.Equal(t, l.FileHeader.ChunkSizeLog2, decodedHeader.ChunkSizeLog2)

	region, err := toc.Decode(data[format.FileHeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, uint32(1), region.Header.FileCount)
	assert.Equal(t, []byte("abcd"), region.StringPoolCompressed)
}

func TestWriteBlockPayloadAppearsAfterPageAlignedToc(t *testing.T) {
	l := simpleLayout(t)

	var buf bytes.Buffer
	_, err := Write(&buf, l)
	require.NoError(t, err)

	data := buf.Bytes()
	// header+toc is far smaller than one page, so the block payload must
	// start at the first PageSize boundary.
	blockStart := data[format.PageSize : format.PageSize+5]
	assert.Equal(t, []byte("hello"), blockStart)
}

func TestWriteAlignsDictionarySectionTo8Bytes(t *testing.T) {
	l := simpleLayout(t)
	l.Dictionary = &dict.Section{
		Mappings: []dict.Mapping{{DictIndex: 0, BlockRunLen: 1}},
		Sizes:    []uint32{10},
		Payload:  []byte("dict-bytes"),
	}

	var buf bytes.Buffer
	_, err := Write(&buf, l)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len()%format.PageSize)

	// header (8) + TOC (36) ends at 44; the section starts at the next
	// 8-byte boundary, 48.
	dictStart := alignUp(format.FileHeaderSize+len(l.TocBytes), 8)
	require.Equal(t, 0, dictStart%8)
	got, err := dict.Decode(buf.Bytes()[dictStart:])
	require.NoError(t, err)
	assert.Equal(t, l.Dictionary.Mappings, got.Mappings)
	assert.Equal(t, l.Dictionary.Sizes, got.Sizes)
	assert.Equal(t, l.Dictionary.Payload, got.Payload)
}

func TestWriteEmptyBlockListStillPageAligns(t *testing.T) {
	codec, err := toc.CodecFor(format.TocPresetStandard)
	require.NoError(t, err)

	l := Layout{
		FileHeader: toc.FileHeader{FormatVersion: format.FormatVersionCurrent, HeaderPageCount: 1},
		TocBytes:   toc.Encode(toc.Header{Variant: format.TocPresetStandard}, codec, nil, nil, nil),
	}

	var buf bytes.Buffer
	n, err := Write(&buf, l)
	require.NoError(t, err)
	assert.EqualValues(t, format.PageSize, n)
}
