package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the type carries internal
// hash-table state that benefits from reuse across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// lz4Codec implements format.CompressionLZ4. The dictionary section only ever trains ZStandard dictionaries, so dict is accepted for
// interface uniformity and ignored here.
type lz4Codec struct{}

var _ Codec = lz4Codec{}

func (lz4Codec) Compress(data []byte, _ int, _ []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, wrapErr("lz4", err)
	}
	if n == 0 {
		// pierrec/lz4 reports n==0 when the block didn't shrink. Return the
		// data unchanged rather than erroring, so the executor's own
		// length check picks up the Copy fallback, the same as lzma and zstd.
		return data, nil
	}

	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, expectedSize int, _ []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, expectedSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, wrapErr("lz4", err)
	}

	return dst[:n], nil
}
