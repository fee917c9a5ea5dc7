package compress

import (
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTagKnownTags(t *testing.T) {
	tags := []format.CompressionTag{
		format.CompressionCopy,
		format.CompressionZStd,
		format.CompressionLZ4,
		format.CompressionBZip3,
		format.CompressionLZMA,
	}

	for _, tag := range tags {
		codec, err := ForTag(tag)
		require.NoError(t, err)
		assert.NotNil(t, codec)
	}
}

func TestForTagUnknown(t *testing.T) {
	_, err := ForTag(format.CompressionTag(7))
	require.ErrorIs(t, err, errs.ErrUnknownCompressionTag)
}

func TestWrapErrNilPassthrough(t *testing.T) {
	assert.NoError(t, wrapErr("copy", nil))
}

func roundTrip(t *testing.T, tag format.CompressionTag, data []byte) {
	t.Helper()

	codec, err := ForTag(tag)
	require.NoError(t, err)

	compressed, err := codec.Compress(data, 3, nil)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed, len(data), nil)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestRoundTripEachCodec(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated, repeated, repeated")

	t.Run("copy", func(t *testing.T) { roundTrip(t, format.CompressionCopy, data) })
	t.Run("zstd", func(t *testing.T) { roundTrip(t, format.CompressionZStd, data) })
	t.Run("lz4", func(t *testing.T) { roundTrip(t, format.CompressionLZ4, data) })
	t.Run("lzma", func(t *testing.T) { roundTrip(t, format.CompressionLZMA, data) })
}

func TestBZip3UnavailableByDefault(t *testing.T) {
	codec, err := ForTag(format.CompressionBZip3)
	require.NoError(t, err)

	_, err = codec.Compress([]byte("payload"), 3, nil)
	require.Error(t, err)

	var ce *errs.CompressionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bzip3", ce.Algo)
}
