package compress

// copyCodec implements format.CompressionCopy: the block is byte-identical to
// its source.
type copyCodec struct{}

var _ Codec = copyCodec{}

func (copyCodec) Compress(data []byte, _ int, _ []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (copyCodec) Decompress(data []byte, expectedSize int, _ []byte) ([]byte, error) {
	if len(data) != expectedSize {
		return nil, wrapErr("copy", errMismatchedCopySize(len(data), expectedSize))
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

type copySizeMismatch struct {
	got, want int
}

func (e *copySizeMismatch) Error() string {
	return "copy block length does not match expected decompressed size"
}

func errMismatchedCopySize(got, want int) error {
	return &copySizeMismatch{got: got, want: want}
}
