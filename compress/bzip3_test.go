package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBZip3CompressReturnsCompressionError(t *testing.T) {
	_, err := bzip3Codec{}.Compress([]byte("data"), 1, nil)
	require.ErrorIs(t, err, errBZip3Unavailable)
}

func TestBZip3DecompressReturnsCompressionError(t *testing.T) {
	_, err := bzip3Codec{}.Decompress([]byte("data"), 4, nil)
	require.ErrorIs(t, err, errBZip3Unavailable)
}
