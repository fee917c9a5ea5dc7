package toc

import (
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() FileEntry {
	return FileEntry{
		HasHash:                 true,
		Hash:                    0x1122334455667788,
		DecompressedSize:        123456,
		DecompressedBlockOffset: 4096,
		PathIndex:               17,
		FirstBlockIndex:         3,
	}
}

func TestStandardCodecRoundTrip(t *testing.T) {
	codec, err := CodecFor(format.TocPresetStandard)
	require.NoError(t, err)
	require.Equal(t, 20, codec.EntrySize())

	e := sampleEntry()
	buf := codec.Encode(e)
	require.Len(t, buf, codec.EntrySize())

	got, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestNoHashCodecRoundTripDropsHash(t *testing.T) {
	codec, err := CodecFor(format.TocPresetNoHash)
	require.NoError(t, err)
	require.Equal(t, 12, codec.EntrySize())

	e := sampleEntry()
	buf := codec.Encode(e)

	got, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.False(t, got.HasHash)
	assert.Zero(t, got.Hash)
	assert.Equal(t, e.DecompressedSize, got.DecompressedSize)
	assert.Equal(t, e.DecompressedBlockOffset, got.DecompressedBlockOffset)
	assert.Equal(t, e.PathIndex, got.PathIndex)
	assert.Equal(t, e.FirstBlockIndex, got.FirstBlockIndex)
}

func TestFileSize64CodecRoundTripLargeFile(t *testing.T) {
	codec, err := CodecFor(format.TocPresetFileSize64)
	require.NoError(t, err)
	require.Equal(t, 28, codec.EntrySize())

	e := sampleEntry()
	e.DecompressedSize = 1 << 40 // 1 TiB, beyond the 32-bit standard preset's range

	buf := codec.Encode(e)
	got, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestCodecForUnsupportedVariant(t *testing.T) {
	_, err := CodecFor(format.TocFlexible)
	require.ErrorIs(t, err, errs.ErrUnsupportedTocVersion)

	_, err = CodecFor(format.TocPresetTiny)
	require.ErrorIs(t, err, errs.ErrUnsupportedTocVersion)
}

func TestEncodeDecodeEntriesRoundTrip(t *testing.T) {
	codec, err := CodecFor(format.TocPresetStandard)
	require.NoError(t, err)

	entries := []FileEntry{sampleEntry(), {HasHash: true, Hash: 7, DecompressedSize: 0, PathIndex: 1}}
	buf := EncodeEntries(codec, entries)

	got, err := DecodeEntries(codec, buf, uint32(len(entries)))
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
