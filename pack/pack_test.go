package pack

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/Sewer56/sewer56-archives-nx/compress"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/stringpool"
	"github.com/Sewer56/sewer56-archives-nx/toc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packToBytes(t *testing.T, files []InputFile, cfg Config) (*bytes.Buffer, error) {
	t.Helper()

	var buf bytes.Buffer
	err := PackTo(context.Background(), &buf, files, cfg, ExecutorConfig{Concurrency: 2}, format.TocPresetStandard)

	return &buf, err
}

func decodeRegion(t *testing.T, data []byte) toc.Region {
	t.Helper()

	require.GreaterOrEqual(t, len(data), format.FileHeaderSize)
	_, err := toc.DecodeFileHeader(data[:format.FileHeaderSize])
	require.NoError(t, err)

	region, err := toc.Decode(data[format.FileHeaderSize:])
	require.NoError(t, err)

	return region
}

func TestPackToEmptyArchive(t *testing.T) {
	buf, err := packToBytes(t, nil, Config{ChunkSize: 1 << 20, SolidBlockSize: 1 << 16, Algorithm: format.CompressionZStd, Level: 3})
	require.NoError(t, err)

	region := decodeRegion(t, buf.Bytes())
	assert.Equal(t, uint32(0), region.Header.FileCount)
	assert.Equal(t, uint32(0), region.Header.BlockCount)
	assert.Equal(t, 0, buf.Len()%format.PageSize)
}

func TestPackToSingleSmallFile(t *testing.T) {
	content := []byte("hello, archive")
	files := []InputFile{memFile("a.txt", content)}

	buf, err := packToBytes(t, files, Config{ChunkSize: 1 << 20, SolidBlockSize: 1 << 16, Algorithm: format.CompressionZStd, Level: 3})
	require.NoError(t, err)

	region := decodeRegion(t, buf.Bytes())
	require.Len(t, region.Entries, 1)
	require.Len(t, region.Blocks, 1)

	entry := region.Entries[0]
	assert.Equal(t, uint64(len(content)), entry.DecompressedSize)
	assert.True(t, entry.HasHash)
	assert.NotZero(t, entry.Hash)

	paths, err := stringpool.Decode(region.StringPoolCompressed, 1<<16, region.Header.FileCount)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "a.txt", paths[0])

	codec, err := compress.ForTag(region.Blocks[0].Compression)
	require.NoError(t, err)

	blockStart := format.PageSize
	blockBytes := buf.Bytes()[blockStart : blockStart+int(region.Blocks[0].CompressedSize)]
	decompressed, err := codec.Decompress(blockBytes, int(entry.DecompressedSize), nil)
	require.NoError(t, err)
	assert.Equal(t, content, decompressed)
}

func TestPackToSolidPackingOfManySmallFiles(t *testing.T) {
	var files []InputFile
	for i := 0; i < 20; i++ {
		files = append(files, memFile(string(rune('a'+i))+".txt", bytes.Repeat([]byte{byte('a' + i)}, 200)))
	}

	buf, err := packToBytes(t, files, Config{ChunkSize: 1 << 20, SolidBlockSize: 4096, Algorithm: format.CompressionZStd, Level: 3})
	require.NoError(t, err)

	region := decodeRegion(t, buf.Bytes())
	assert.Equal(t, uint32(20), region.Header.FileCount)
	assert.Less(t, int(region.Header.BlockCount), 20, "small files should share SOLID blocks, not get one block each")
}

func TestPackToChunkedLargeFile(t *testing.T) {
	content := bytes.Repeat([]byte{'z'}, 3*1024*1024)
	files := []InputFile{memFile("big.bin", content)}

	cfg := Config{ChunkSize: 1024 * 1024, SolidBlockSize: 4096, Algorithm: format.CompressionZStd, Level: 3}
	buf, err := packToBytes(t, files, cfg)
	require.NoError(t, err)

	region := decodeRegion(t, buf.Bytes())
	require.Len(t, region.Entries, 1)
	assert.Equal(t, uint32(3), region.Header.BlockCount)
	assert.Equal(t, uint32(0), region.Entries[0].FirstBlockIndex)
}

func TestPackToDictionaryCompressesMatchingSolidBlock(t *testing.T) {
	dictBytes := bytes.Repeat([]byte("jsonlikecontent"), 64)
	var files []InputFile
	for i := 0; i < 4; i++ {
		f := memFile(string(rune('a'+i))+".json", bytes.Repeat([]byte("jsonlikecontent"), 8))
		f.DictionaryGroup = "json"
		files = append(files, f)
	}

	cfg := Config{
		ChunkSize:      1 << 20,
		SolidBlockSize: 1 << 16,
		Algorithm:      format.CompressionZStd,
		Level:          3,
		Dictionaries:   map[string][]byte{"json": dictBytes},
	}
	buf, err := packToBytes(t, files, cfg)
	require.NoError(t, err)

	fileHeader, err := toc.DecodeFileHeader(buf.Bytes()[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.True(t, fileHeader.HasDictionary)

	region := decodeRegion(t, buf.Bytes())
	require.Len(t, region.Blocks, 1)
}

func TestPackToWithoutMatchingDictionaryGroupOmitsSection(t *testing.T) {
	files := []InputFile{memFile("a.txt", []byte("no group set"))}

	cfg := Config{
		ChunkSize:      1 << 20,
		SolidBlockSize: 1 << 16,
		Algorithm:      format.CompressionZStd,
		Level:          3,
		Dictionaries:   map[string][]byte{"json": []byte("unused")},
	}
	buf, err := packToBytes(t, files, cfg)
	require.NoError(t, err)

	fileHeader, err := toc.DecodeFileHeader(buf.Bytes()[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.False(t, fileHeader.HasDictionary)
}

func TestPackToUserDataSection(t *testing.T) {
	files := []InputFile{memFile("a.txt", []byte("content"))}
	cfg := Config{
		ChunkSize:      1 << 20,
		SolidBlockSize: 1 << 16,
		Algorithm:      format.CompressionZStd,
		Level:          3,
		UserData:       []byte("build-id: 42"),
	}
	buf, err := packToBytes(t, files, cfg)
	require.NoError(t, err)

	fileHeader, err := toc.DecodeFileHeader(buf.Bytes()[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.True(t, fileHeader.HasUserData)
}

func TestPackToAtomicRename(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.nx"

	files := []InputFile{memFile("a.txt", []byte("content"))}
	cfg := Config{ChunkSize: 1 << 20, SolidBlockSize: 1 << 16, Algorithm: format.CompressionZStd, Level: 3}

	err := Pack(context.Background(), files, cfg, ExecutorConfig{Concurrency: 1}, format.TocPresetStandard, target)
	require.NoError(t, err)

	// Only the renamed target remains; no temporary file is left behind.
	dirEntries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	assert.Equal(t, "out.nx", dirEntries[0].Name())
}
