//go:build nobuild

package compress

// Alternate cgo-backed ZStandard implementation, an opt-in escape hatch for
// valyala/gozstd. Not part of the default build: gozstd links against the
// real C zstd library and most Nx deployments (network distribution of mod
// archives) prefer a cgo-free binary. Left in the tree as the documented
// path to the faster encoder for callers who do want cgo.

import "github.com/valyala/gozstd"

func (zstdCodec) Compress(data []byte, level int, dict []byte) ([]byte, error) {
	var framed []byte
	if len(dict) > 0 {
		cdict, err := gozstd.NewCDict(dict)
		if err != nil {
			return nil, wrapErr("zstd", err)
		}
		defer cdict.Release()

		framed = gozstd.CompressDict(nil, data, cdict)
	} else {
		framed = gozstd.CompressLevel(nil, data, level)
	}

	if len(framed) < len(zstdMagic) {
		return nil, wrapErr("zstd", errShortZstdFrame(len(framed)))
	}

	return framed[len(zstdMagic):], nil
}

func (zstdCodec) Decompress(data []byte, expectedSize int, dict []byte) ([]byte, error) {
	framed := make([]byte, 0, len(zstdMagic)+len(data))
	framed = append(framed, zstdMagic[:]...)
	framed = append(framed, data...)

	dst := make([]byte, 0, expectedSize)
	if len(dict) > 0 {
		ddict, err := gozstd.NewDDict(dict)
		if err != nil {
			return nil, wrapErr("zstd", err)
		}
		defer ddict.Release()

		out, err := gozstd.DecompressDict(dst, framed, ddict)
		if err != nil {
			return nil, wrapErr("zstd", err)
		}

		return out, nil
	}

	out, err := gozstd.Decompress(dst, framed)
	if err != nil {
		return nil, wrapErr("zstd", err)
	}

	return out, nil
}
