package archive

import (
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sewer56/sewer56-archives-nx/compress"
	"github.com/Sewer56/sewer56-archives-nx/dict"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/hash"
)

// UserData returns the archive's opaque user-data payload, decompressed, and
// true if the archive carries one.
func (a *Archive) UserData() ([]byte, bool, error) {
	if a.state != stateReady {
		return nil, false, errs.ErrNotReady
	}

	if a.userData == nil {
		return nil, false, nil
	}

	data, err := a.userData.Decompress()
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// List returns every file in the archive, in TOC entry order.
func (a *Archive) List() ([]FileInfo, error) {
	if a.state != stateReady {
		return nil, errs.ErrNotReady
	}

	out := make([]FileInfo, len(a.region.Entries))
	for i, e := range a.region.Entries {
		out[i] = FileInfo{Path: a.paths[i], Size: e.DecompressedSize, Hash: e.Hash, HasHash: e.HasHash}
	}

	return out, nil
}

// Find looks up a single file by its archived path.
func (a *Archive) Find(path string) (FileInfo, bool, error) {
	if a.state != stateReady {
		return FileInfo{}, false, errs.ErrNotReady
	}

	idx, ok := a.pathIndex[path]
	if !ok {
		return FileInfo{}, false, nil
	}

	e := a.region.Entries[idx]

	return FileInfo{Path: path, Size: e.DecompressedSize, Hash: e.Hash, HasHash: e.HasHash}, true, nil
}

// Get decompresses and returns the full contents of path: a
// SOLID file is one slice out of its shared block's decompressed bytes; a
// chunked file is the concatenation of its consecutive chunk blocks with the
// final block truncated to its remainder length.
func (a *Archive) Get(path string) ([]byte, error) {
	if a.state != stateReady {
		return nil, errs.ErrNotReady
	}

	idx, ok := a.pathIndex[path]
	if !ok {
		return nil, errs.NewMalformedArchive("no such file: %q", path)
	}

	return a.getEntry(idx)
}

// entryBlocks returns the distinct block indices idx's entry spans: one
// block for a SOLID file, or one per chunk in file order for a chunked file.
func (a *Archive) entryBlocks(idx int) []uint32 {
	e := a.region.Entries[idx]
	owner := a.blockOwners[e.FirstBlockIndex]

	if !owner.chunked {
		return []uint32{e.FirstBlockIndex}
	}

	chunkSize := format.ChunkSizeFromLog2(a.fileHeader.ChunkSizeLog2)
	count := (e.DecompressedSize + chunkSize - 1) / chunkSize

	blocks := make([]uint32, count)
	for c := range blocks {
		blocks[c] = e.FirstBlockIndex + uint32(c)
	}

	return blocks
}

// assembleEntry reconstructs idx's file content from already-decompressed
// blocks (keyed by block index), slicing a SOLID entry out of its shared
// block or concatenating a chunked entry's consecutive chunks, then applying
// opt-in hash verification.
func (a *Archive) assembleEntry(idx int, blocks map[uint32][]byte) ([]byte, error) {
	e := a.region.Entries[idx]
	owner := a.blockOwners[e.FirstBlockIndex]

	var out []byte
	if owner.chunked {
		out = make([]byte, 0, e.DecompressedSize)
		for _, blockIdx := range a.entryBlocks(idx) {
			decompressed, ok := blocks[blockIdx]
			if !ok {
				return nil, errs.NewMalformedArchive("block %d was not decompressed for entry %q", blockIdx, a.paths[idx])
			}

			out = append(out, decompressed...)
		}
	} else {
		blockBytes, ok := blocks[e.FirstBlockIndex]
		if !ok {
			return nil, errs.NewMalformedArchive("block %d was not decompressed for entry %q", e.FirstBlockIndex, a.paths[idx])
		}

		start := e.DecompressedBlockOffset
		end := start + e.DecompressedSize
		if end > uint64(len(blockBytes)) {
			return nil, errs.NewMalformedArchive("entry %q: range [%d:%d) exceeds decompressed block size %d", a.paths[idx], start, end, len(blockBytes))
		}

		out = blockBytes[start:end]
	}

	if a.cfg.verifyHash && e.HasHash {
		if got := hash.Sum64(out); got != e.Hash {
			return nil, &errs.HashMismatch{Path: a.paths[idx], Want: e.Hash, Got: got}
		}
	}

	return out, nil
}

// getEntry decompresses idx's distinct blocks (once each, even for a
// chunked file spanning several) and assembles its full content.
func (a *Archive) getEntry(idx int) ([]byte, error) {
	blocks := make(map[uint32][]byte, 1)
	for _, blockIdx := range a.entryBlocks(idx) {
		if _, ok := blocks[blockIdx]; ok {
			continue
		}

		decompressed, err := a.decompressBlock(blockIdx)
		if err != nil {
			return nil, err
		}

		blocks[blockIdx] = decompressed
	}

	return a.assembleEntry(idx, blocks)
}

// decompressBlock decompresses the compressed bytes for blockIdx, looking up
// its dictionary (if the archive carries a dictionary section) and computing
// its exact decompressed size from blockOwners rather than from the
// compressor's own framing: compress/copy.go and lzma.go require the
// expected-size argument exact, lz4.go uses it as an upper bound, and only
// the ZStandard backend treats it as a loose capacity hint.
func (a *Archive) decompressBlock(blockIdx uint32) ([]byte, error) {
	block := a.region.Blocks[blockIdx]
	owner := a.blockOwners[blockIdx]

	codec, err := compress.ForTag(block.Compression)
	if err != nil {
		return nil, err
	}

	var dictBytes []byte
	if a.dictionary != nil {
		dictIdx, err := dict.ForBlock(a.dictionaryBounds, a.dictionary.Mappings, blockIdx)
		if err != nil {
			return nil, err
		}
		if dictIdx != format.NoDictionary {
			dictBytes, err = a.dictionary.DictionaryBytes(dictIdx)
			if err != nil {
				return nil, err
			}
		}
	}

	start := a.blockOffsets[blockIdx]
	end := start + int64(block.CompressedSize)
	if end > int64(len(a.data)) {
		return nil, errs.NewMalformedArchive("block %d extends past mapped region", blockIdx)
	}

	decompressed, err := codec.Decompress(a.data[start:end], int(owner.decompressedSize), dictBytes)
	if err != nil {
		return nil, err
	}

	if a.cfg.logger != nil {
		a.cfg.logger.Debug("block decompressed",
			slog.Int("block_index", int(blockIdx)),
			slog.Int("compressed_size", int(block.CompressedSize)),
			slog.Int("decompressed_size", len(decompressed)),
		)
	}

	return decompressed, nil
}

// ExtractResult pairs one requested path with its decompressed bytes or the
// error that prevented extraction.
type ExtractResult struct {
	Path string
	Data []byte
	Err  error
}

// Extract decompresses every path in paths, grouping requests by the
// block(s) they resolve to so a SOLID block shared by several requested
// files is decompressed at most once per call. A task pool of width
// WithConcurrency's value (or runtime.NumCPU() if unset) parallelizes across
// the distinct blocks, not across paths.
func (a *Archive) Extract(paths []string) ([]ExtractResult, error) {
	if a.state != stateReady {
		return nil, errs.ErrNotReady
	}

	concurrency := a.cfg.concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]ExtractResult, len(paths))
	entryIdx := make([]int, len(paths))
	blockSet := make(map[uint32]struct{})

	for i, p := range paths {
		idx, ok := a.pathIndex[p]
		if !ok {
			results[i] = ExtractResult{Path: p, Err: errs.NewMalformedArchive("no such file: %q", p)}
			entryIdx[i] = -1

			continue
		}

		entryIdx[i] = idx
		for _, blockIdx := range a.entryBlocks(idx) {
			blockSet[blockIdx] = struct{}{}
		}
	}

	blockIndices := make([]uint32, 0, len(blockSet))
	for blockIdx := range blockSet {
		blockIndices = append(blockIndices, blockIdx)
	}

	decoded := make(map[uint32][]byte, len(blockIndices))
	decodeErr := make(map[uint32]error, len(blockIndices))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for _, blockIdx := range blockIndices {
		blockIdx := blockIdx

		g.Go(func() error {
			data, err := a.decompressBlock(blockIdx)

			mu.Lock()
			if err != nil {
				decodeErr[blockIdx] = err
			} else {
				decoded[blockIdx] = data
			}
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	for i, idx := range entryIdx {
		if idx < 0 {
			continue
		}

		var blockErr error
		for _, blockIdx := range a.entryBlocks(idx) {
			if err, ok := decodeErr[blockIdx]; ok {
				blockErr = err
				break
			}
		}
		if blockErr != nil {
			results[i] = ExtractResult{Path: paths[i], Err: blockErr}
			continue
		}

		data, err := a.assembleEntry(idx, decoded)
		results[i] = ExtractResult{Path: paths[i], Data: data, Err: err}
	}

	return results, nil
}
