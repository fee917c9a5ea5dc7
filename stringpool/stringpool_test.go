package stringpool

import (
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	paths := []string{"textures/b.png", "a.txt", "textures/a.png", "readme.md"}

	result, err := Encode(paths, 3)
	require.NoError(t, err)
	require.Len(t, result.PathIndex, len(paths))

	decompressedSize := rawSize(t, paths)

	decoded, err := Decode(result.Compressed, decompressedSize, uint32(len(paths)))
	require.NoError(t, err)

	expectedSorted := []string{"a.txt", "readme.md", "textures/a.png", "textures/b.png"}
	assert.Equal(t, expectedSorted, decoded)

	for i, p := range paths {
		assert.Equal(t, p, decoded[result.PathIndex[i]])
	}
}

func TestEncodeEmptyPool(t *testing.T) {
	result, err := Encode(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, result.PathIndex)

	decoded, err := Decode(result.Compressed, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeFileCountMismatch(t *testing.T) {
	paths := []string{"a", "b", "c"}
	result, err := Encode(paths, 1)
	require.NoError(t, err)

	_, err = Decode(result.Compressed, rawSize(t, paths), 2)
	require.ErrorIs(t, err, errs.ErrMalformedStringPool)
}

func TestDecodeStableSortOrderMatchesExpectation(t *testing.T) {
	paths := []string{"z", "a", "m"}
	result, err := Encode(paths, 1)
	require.NoError(t, err)

	decoded, err := Decode(result.Compressed, rawSize(t, paths), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, decoded)
}

func rawSize(t *testing.T, paths []string) int {
	t.Helper()

	n := 0
	for _, p := range paths {
		n += len(p) + 1
	}

	return n
}
