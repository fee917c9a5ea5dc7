//go:build !nobuild

package compress

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse when no dictionary is
// involved — klauspost/compress/zstd's decoder is designed to operate
// without allocations once warmed up, so pooling amortizes that warmup
// across blocks.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic("compress: failed to build pooled zstd decoder: " + err.Error())
		}

		return decoder
	},
}

// Compress implements Compressor for format.CompressionZStd.
//
// The returned bytes are the zstd frame with its 4-byte magic number
// stripped and the checksum disabled explicitly below. The rest of the frame
// header is kept as EncodeAll writes it: it still carries the frame content
// size and, when the dictionary has an ID, that dictionary ID. Empty input
// is encoded as a full (empty) frame so it round-trips through Decompress.
func (zstdCodec) Compress(data []byte, level int, dict []byte) ([]byte, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderCRC(false),
		zstd.WithZeroFrames(true),
	}
	if len(dict) > 0 {
		opts = append(opts, zstd.WithEncoderDict(dict))
	}

	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, wrapErr("zstd", err)
	}
	defer enc.Close()

	framed := enc.EncodeAll(data, nil)
	if len(framed) < len(zstdMagic) {
		return nil, wrapErr("zstd", errShortZstdFrame(len(framed)))
	}

	return framed[len(zstdMagic):], nil
}

// Decompress implements Decompressor for format.CompressionZStd.
func (zstdCodec) Decompress(data []byte, expectedSize int, dict []byte) ([]byte, error) {
	framed := make([]byte, 0, len(zstdMagic)+len(data))
	framed = append(framed, zstdMagic[:]...)
	framed = append(framed, data...)

	var dec *zstd.Decoder
	var err error
	if len(dict) > 0 {
		dec, err = zstd.NewReader(nil, zstd.WithDecoderDicts(dict), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, wrapErr("zstd", err)
		}
		defer dec.Close()
	} else {
		dec, _ = zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)
	}

	dst := make([]byte, 0, expectedSize)
	out, err := dec.DecodeAll(framed, dst)
	if err != nil {
		return nil, wrapErr("zstd", err)
	}

	return out, nil
}

type shortZstdFrame struct{ n int }

func (e *shortZstdFrame) Error() string { return "zstd frame shorter than its own magic number" }

func errShortZstdFrame(n int) error { return &shortZstdFrame{n: n} }
