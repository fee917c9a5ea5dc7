//go:build !bzip3backend

package compress

import "errors"

// bzip3Codec implements format.CompressionBZip3.
//
// No pure-Go or cgo BZip3 binding is available (see DESIGN.md) — BZip3 is a
// newer, niche algorithm without an established Go ecosystem package the way
// zstd/lz4/lzma have one. This build does not vendor a hand-written BZip3
// implementation; the tag is wired into the format (CompressionTag, block
// framing, registry dispatch) so an archive carrying BZip3 blocks parses and
// reports a precise error instead of silently misreading them.
// A real binding can be dropped in behind the "bzip3backend" build tag
// without touching any other package.
type bzip3Codec struct{}

var _ Codec = bzip3Codec{}

var errBZip3Unavailable = errors.New("bzip3: no backend compiled into this build")

func (bzip3Codec) Compress(data []byte, _ int, _ []byte) ([]byte, error) {
	return nil, wrapErr("bzip3", errBZip3Unavailable)
}

func (bzip3Codec) Decompress(data []byte, expectedSize int, _ []byte) ([]byte, error) {
	return nil, wrapErr("bzip3", errBZip3Unavailable)
}
