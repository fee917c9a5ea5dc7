package toc

import (
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTripsFullRegion(t *testing.T) {
	entries := []FileEntry{
		{HasHash: true, Hash: 1, DecompressedSize: 10, PathIndex: 0, FirstBlockIndex: 0},
		{HasHash: true, Hash: 2, DecompressedSize: 20, DecompressedBlockOffset: 10, PathIndex: 1, FirstBlockIndex: 0},
	}
	blocks := []Block{{CompressedSize: 25, Compression: format.CompressionZStd}}
	pool := []byte("fake-compressed-pool-bytes")

	header := Header{
		Variant:                  format.TocPresetStandard,
		FileCount:                uint32(len(entries)),
		BlockCount:               uint32(len(blocks)),
		StringPoolCompressedSize: uint32(len(pool)),
	}

	codec, err := CodecFor(header.Variant)
	require.NoError(t, err)

	buf := Encode(header, codec, entries, blocks, pool)

	region, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, header, region.Header)
	assert.Equal(t, entries, region.Entries)
	assert.Equal(t, blocks, region.Blocks)
	assert.Equal(t, pool, region.StringPoolCompressed)
}

func TestDecodeRejectsTruncatedPool(t *testing.T) {
	header := Header{Variant: format.TocPresetNoHash, FileCount: 0, BlockCount: 0, StringPoolCompressedSize: 100}
	buf := header.Encode()

	_, err := Decode(buf)
	require.Error(t, err)
}
