// Package stringpool implements the lex-sorted, NUL-separated, ZStandard-
// compressed path list stored in every archive's TOC region.
package stringpool

import (
	"bytes"
	"sort"

	"github.com/Sewer56/sewer56-archives-nx/compress"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
)

// EncodeResult is the output of Encode: the compressed pool bytes, plus the
// permutation the planner must apply to get each input path's PathIndex.
type EncodeResult struct {
	Compressed []byte
	// PathIndex[i] is the pool index (lex-sorted position) of paths[i], the
	// i-th path in the caller's original input order.
	PathIndex []uint32
}

// Encode lex-sorts paths, NUL-joins them, and compresses the result with the
// Copy-free ZStandard backend (level is the archive's configured
// compression level for non-block data; dictionaries never apply to the
// string pool).
func Encode(paths []string, level int) (EncodeResult, error) {
	order := make([]int, len(paths))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return paths[order[a]] < paths[order[b]]
	})

	sorted := make([]string, len(paths))
	pathIndex := make([]uint32, len(paths))
	for poolIdx, origIdx := range order {
		sorted[poolIdx] = paths[origIdx]
		pathIndex[origIdx] = uint32(poolIdx)
	}

	var buf bytes.Buffer
	for _, p := range sorted {
		buf.WriteString(p)
		buf.WriteByte(0)
	}

	codec, err := compress.ForTag(format.CompressionZStd)
	if err != nil {
		return EncodeResult{}, err
	}

	compressed, err := codec.Compress(buf.Bytes(), level, nil)
	if err != nil {
		return EncodeResult{}, err
	}

	return EncodeResult{Compressed: compressed, PathIndex: pathIndex}, nil
}

// Decode decompresses pool and splits it on NUL bytes, returning exactly
// fileCount strings in lex-sorted order. decompressedSize is a capacity hint
// for the ZStandard decoder's output buffer, not a bound: the archive does
// not store the pool's decompressed size, so archive.Archive passes an
// estimate.
func Decode(pool []byte, decompressedSize int, fileCount uint32) ([]string, error) {
	codec, err := compress.ForTag(format.CompressionZStd)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(pool, decompressedSize, nil)
	if err != nil {
		return nil, err
	}

	if fileCount == 0 {
		if len(raw) != 0 {
			return nil, errs.ErrMalformedStringPool
		}

		return nil, nil
	}

	paths := make([]string, 0, fileCount)
	start := 0
	for {
		// 0x00 cannot appear inside a multi-byte UTF-8 sequence, so a byte-wise scan for NUL is always safe here.
		idx := bytes.IndexByte(raw[start:], 0)
		if idx < 0 {
			break
		}

		paths = append(paths, string(raw[start:start+idx]))
		start += idx + 1
	}

	if uint32(len(paths)) != fileCount || start != len(raw) {
		return nil, errs.ErrMalformedStringPool
	}

	return paths, nil
}
