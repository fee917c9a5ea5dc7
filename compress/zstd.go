package compress

// zstdMagic is the 4-byte magic number klauspost/compress/zstd (and the
// reference zstd implementation) prepends to every frame. Nx's on-disk
// framing strips it: the decoder already knows a block is ZStandard-
// compressed from its format.CompressionTag, so storing the magic again is
// four wasted bytes per block.
var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// zstdCodec implements format.CompressionZStd. The actual Compress/Decompress
// bodies live in zstd_pure.go (klauspost/compress/zstd, default build) or
// zstd_cgo.go (valyala/gozstd, opt-in via the "nobuild" escape-hatch build tag).
type zstdCodec struct{}

var _ Codec = zstdCodec{}
