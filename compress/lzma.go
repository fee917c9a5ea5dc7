package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaCodec implements format.CompressionLZMA, this module's extension of
// the façade beyond the four most common tags. Built on ulikunitz/xz/lzma, a
// pure-Go LZMA implementation.
type lzmaCodec struct{}

var _ Codec = lzmaCodec{}

func (lzmaCodec) Compress(data []byte, level int, _ []byte) ([]byte, error) {
	var buf bytes.Buffer

	cfg := lzma.WriterConfig{}
	if level > 0 {
		// ulikunitz/xz/lzma doesn't expose a 1-9 "level" knob the way
		// zstd/lz4 do; it exposes a dictionary-size knob instead. Scale the
		// caller's level onto a modest dictionary size ladder.
		cfg.DictCap = 1 << (16 + min(level, 8))
	}

	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, wrapErr("lzma", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, wrapErr("lzma", err)
	}
	if err := w.Close(); err != nil {
		return nil, wrapErr("lzma", err)
	}

	return buf.Bytes(), nil
}

func (lzmaCodec) Decompress(data []byte, expectedSize int, _ []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapErr("lzma", err)
	}

	out := make([]byte, expectedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, wrapErr("lzma", err)
	}

	return out, nil
}
