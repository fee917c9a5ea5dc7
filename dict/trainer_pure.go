//go:build !nobuild

package dict

import "errors"

// ErrTrainingUnavailable is returned by Train when built without the cgo
// gozstd backend: the pure-Go klauspost/compress/zstd path has no
// dictionary-training API (ZDICT_trainFromBuffer is a libzstd-only
// primitive). Archives can still use pre-trained or externally supplied
// dictionary bytes via Section.Payload; this only affects in-process
// training from sample corpora.
var ErrTrainingUnavailable = errors.New("dict: training requires the cgo gozstd backend (build with -tags nobuild... see compress/zstd_cgo.go)")

// Train is documented on the cgo-backed variant in trainer_cgo.go. This
// build reports ErrTrainingUnavailable instead of silently returning a
// zero-value dictionary.
func Train(samples [][]byte, targetSize int) ([]byte, error) {
	return nil, ErrTrainingUnavailable
}
