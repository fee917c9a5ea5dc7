//go:build nobuild

package dict

// Dictionary training requires libzstd's ZDICT_trainFromBuffer, which
// klauspost/compress/zstd (the default pure-Go backend) does not expose —
// training is a C-library-only feature with no pure-Go equivalent.
// valyala/gozstd wraps it as BuildDict. This file mirrors compress/zstd_cgo.go's
// opt-in pattern: present but gated behind the same "nobuild" tag as the rest
// of the cgo zstd path, so a caller that opts into cgo gets real
// per-extension training and everyone else gets a clear error from Train
// below.
import "github.com/valyala/gozstd"

// Train builds a dictionary of approximately targetSize bytes from samples.
func Train(samples [][]byte, targetSize int) ([]byte, error) {
	return gozstd.BuildDict(samples, targetSize), nil
}
