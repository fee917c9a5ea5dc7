package userdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte(`{"mod_author":"sewer56","build":42}`)

	buf, err := Encode(payload, 3)
	require.NoError(t, err)

	section, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(payload)), section.DecompressedSize)

	got, err := section.Decompress()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	buf, err := Encode([]byte("hello"), 1)
	require.NoError(t, err)

	_, err = Decode(buf[:len(buf)-1])
	require.Error(t, err)
}
