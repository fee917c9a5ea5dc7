package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("lz4 round trip payload "), 500)

	compressed, err := lz4Codec{}.Compress(data, 0, nil)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	decompressed, err := lz4Codec{}.Decompress(compressed, len(data), nil)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestLZ4EmptyInput(t *testing.T) {
	out, err := lz4Codec{}.Compress(nil, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestLZ4IncompressibleInputReturnsUnshrunkBytesWithoutError(t *testing.T) {
	data := []byte("x")

	out, err := lz4Codec{}.Compress(data, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}
