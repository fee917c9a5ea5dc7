package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdRoundTripNoDict(t *testing.T) {
	data := bytes.Repeat([]byte("payload-for-zstd-"), 200)

	compressed, err := zstdCodec{}.Compress(data, 6, nil)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	decompressed, err := zstdCodec{}.Decompress(compressed, len(data), nil)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestZstdRoundTripWithDict(t *testing.T) {
	dict := bytes.Repeat([]byte("common-mod-texture-prefix-"), 50)
	data := append(append([]byte{}, dict...), []byte("file specific tail bytes")...)

	compressed, err := zstdCodec{}.Compress(data, 6, dict)
	require.NoError(t, err)

	decompressed, err := zstdCodec{}.Decompress(compressed, len(data), dict)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestZstdFrameHasNoMagicNumber(t *testing.T) {
	data := []byte("small input")

	compressed, err := zstdCodec{}.Compress(data, 1, nil)
	require.NoError(t, err)

	if len(compressed) >= len(zstdMagic) {
		assert.NotEqual(t, zstdMagic[:], compressed[:len(zstdMagic)])
	}
}
