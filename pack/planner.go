// Package pack implements the packing planner, executor, and writer: the
// half of the archive engine that groups input files into SOLID bundles and
// chunked large-file runs, compresses them in parallel, and emits a
// byte-exact archive layout.
package pack

import (
	"io"
	"sort"

	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/dedup"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/hash"
	"github.com/Sewer56/sewer56-archives-nx/stringpool"
)

// InputFile describes one file the caller wants packed.
type InputFile struct {
	Path            string
	Size            uint64
	Open            func() (io.ReadCloser, error)
	DictionaryGroup string // optional; typically the file extension
}

// DedupMode controls whether the planner deduplicates identical file
// content.
type DedupMode int

const (
	DedupOff DedupMode = iota
	DedupContentAddressed
)

// Config configures the planner and, transitively, the executor that
// consumes its output.
type Config struct {
	ChunkSize      uint64
	SolidBlockSize uint64
	Algorithm      format.CompressionTag
	Level          int
	Dedup          DedupMode

	// Dictionaries maps an InputFile.DictionaryGroup name to pre-trained
	// dictionary bytes (see dict.Train). A block is compressed against a
	// dictionary only when every file it carries shares the same group and
	// that group has an entry here; mixed-group SOLID blocks are never
	// dictionary-compressed, and each chunk block of a chunked file uses
	// that file's group.
	Dictionaries map[string][]byte
	// UserData, when non-empty, is compressed and appended as an opaque
	// UserDataSection after the TOC (and dictionary section, if any).
	UserData []byte
}

// blockKind distinguishes a SOLID bundle from one chunk of a chunked file,
// both represented uniformly in Plan.Blocks.
type blockKind int

const (
	blockSolid blockKind = iota
	blockChunk
)

// BlockPlan is one planned block: either a SOLID bundle of whole small
// files, or a single chunk belonging to exactly one large file. The
// executor (executor.go) turns each BlockPlan into compressed bytes.
type BlockPlan struct {
	Kind  blockKind
	Files []PlannedFileRef // whole files, for a SOLID block
	Chunk ChunkRef         // chunk source, for a chunk block
}

// PlannedFileRef is one file's placement within a SOLID block.
type PlannedFileRef struct {
	Input  *InputFile
	Offset uint64
}

// ChunkRef is the byte range of a chunked file's data that one block holds.
type ChunkRef struct {
	Input  *InputFile
	Offset uint64
	Length uint64
}

// FileAssignment ties one input file to its final FileEntry fields, ready
// for the writer to assemble into FileEntry records once path_index values
// are known.
type FileAssignment struct {
	Path                    string
	Size                    uint64
	PathIndex               uint32
	FirstBlockIndex         uint32
	DecompressedBlockOffset uint64
	Deduplicated            bool
}

// Plan is the planner's complete output: the ordered block list the
// executor will compress, and per-file metadata the writer assembles into
// FileEntry records.
type Plan struct {
	Blocks      []BlockPlan
	Assignments []FileAssignment
	ChunkSize   uint64
	// StringPool is the already-ZStandard-compressed, lex-sorted path list;
	// the writer places these bytes directly into the archive without
	// recompressing.
	StringPool []byte
	// DictionaryGroups[i] names the Config.Dictionaries entry Blocks[i] was
	// compressed against, or "" if it was compressed without a dictionary.
	DictionaryGroups []string
}

// BuildPlan groups files into SOLID bundles and chunked large-file runs via
// a five-step algorithm:
//  1. stable sort by (size, path) ascending;
//  2. walk the sorted prefix, filling SOLID bundles up to SolidBlockSize;
//  3. emit ceil(size/chunk_size) chunk blocks for any file over SolidBlockSize;
//  4. assign path_index via the string pool's sort permutation;
//  5. return the ordered block plan.
//
// When cfg.Dedup is DedupContentAddressed, files are content-hashed (XXH3-64
// over their full bytes, read once up front) before bundling; a file whose
// fingerprint (hash, size) was already seen is pointed at the earlier
// file's location instead of being planned into a new block. Only files
// small enough to be SOLID-bundle candidates participate in dedup — a
// chunked file's whole point is independent parallel access, so dedup
// doesn't apply to it here (see DESIGN.md).
//
// When cfg.Dictionaries is non-empty, each emitted block also gets a
// DictionaryGroups entry: a SOLID block's entry is set only when every file
// it carries shares one DictionaryGroup present in cfg.Dictionaries; a
// chunk block's entry follows its owning file's group directly.
func BuildPlan(files []InputFile, cfg Config) (*Plan, error) {
	if err := validateChunkSize(cfg.ChunkSize); err != nil {
		return nil, err
	}

	for i := range files {
		if files[i].Path == "" {
			return nil, errs.ErrEmptyPath
		}
	}

	order := make([]int, len(files))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := &files[order[a]], &files[order[b]]
		if fa.Size != fb.Size {
			return fa.Size < fb.Size
		}

		return fa.Path < fb.Path
	})

	sorted := make([]*InputFile, len(files))
	for i, idx := range order {
		sorted[i] = &files[idx]
	}

	var tracker *dedup.Tracker
	var fingerprints map[string]dedup.Fingerprint
	if cfg.Dedup == DedupContentAddressed {
		tracker = dedup.NewTracker()

		var err error
		fingerprints, err = hashFiles(sorted, cfg.SolidBlockSize)
		if err != nil {
			return nil, err
		}
	}

	plan := &Plan{ChunkSize: cfg.ChunkSize}
	assignments := make(map[string]FileAssignment, len(files))

	var current []PlannedFileRef
	var currentBudget uint64

	flushSolid := func() {
		if len(current) == 0 {
			return
		}

		blockIndex := uint32(len(plan.Blocks))
		plan.Blocks = append(plan.Blocks, BlockPlan{Kind: blockSolid, Files: current})
		plan.DictionaryGroups = append(plan.DictionaryGroups, solidBlockGroup(current, cfg.Dictionaries))

		for _, ref := range current {
			assignments[ref.Input.Path] = FileAssignment{
				Path:                    ref.Input.Path,
				Size:                    ref.Input.Size,
				FirstBlockIndex:         blockIndex,
				DecompressedBlockOffset: ref.Offset,
			}

			if tracker != nil {
				if fp, ok := fingerprints[ref.Input.Path]; ok {
					tracker.Track(fp, dedup.Location{
						FirstBlockIndex:         blockIndex,
						DecompressedBlockOffset: uint32(ref.Offset),
					})
				}
			}
		}

		current = nil
		currentBudget = 0
	}

	for _, f := range sorted {
		isChunked := f.Size > cfg.SolidBlockSize && f.Size > 0

		if !isChunked && tracker != nil {
			if fp, ok := fingerprints[f.Path]; ok {
				if loc, seen := tracker.Lookup(fp); seen {
					assignments[f.Path] = FileAssignment{
						Path:                    f.Path,
						Size:                    f.Size,
						FirstBlockIndex:         loc.FirstBlockIndex,
						DecompressedBlockOffset: uint64(loc.DecompressedBlockOffset),
						Deduplicated:            true,
					}

					continue
				}
			}
		}

		if isChunked {
			flushSolid()

			count := chunkCount(f.Size, cfg.ChunkSize)
			firstBlockIndex := uint32(len(plan.Blocks))

			chunkGroup := ""
			if _, ok := cfg.Dictionaries[f.DictionaryGroup]; ok {
				chunkGroup = f.DictionaryGroup
			}

			var offset uint64
			for i := uint64(0); i < count; i++ {
				length := cfg.ChunkSize
				if remaining := f.Size - offset; remaining < length {
					length = remaining
				}

				plan.Blocks = append(plan.Blocks, BlockPlan{
					Kind:  blockChunk,
					Chunk: ChunkRef{Input: f, Offset: offset, Length: length},
				})
				plan.DictionaryGroups = append(plan.DictionaryGroups, chunkGroup)
				offset += length
			}

			assignments[f.Path] = FileAssignment{
				Path:                    f.Path,
				Size:                    f.Size,
				FirstBlockIndex:         firstBlockIndex,
				DecompressedBlockOffset: 0,
			}

			continue
		}

		if currentBudget+f.Size > cfg.SolidBlockSize && len(current) > 0 {
			flushSolid()
		}

		// Track at placement time (the open bundle becomes block
		// len(plan.Blocks) when flushed) so a duplicate later in the same
		// bundle is found too.
		if tracker != nil {
			if fp, ok := fingerprints[f.Path]; ok {
				tracker.Track(fp, dedup.Location{
					FirstBlockIndex:         uint32(len(plan.Blocks)),
					DecompressedBlockOffset: uint32(currentBudget),
				})
			}
		}

		current = append(current, PlannedFileRef{Input: f, Offset: currentBudget})
		currentBudget += f.Size
	}
	flushSolid()

	paths := make([]string, len(files))
	for i := range files {
		paths[i] = files[i].Path
	}

	poolResult, err := stringpool.Encode(paths, cfg.Level)
	if err != nil {
		return nil, err
	}

	plan.Assignments = make([]FileAssignment, len(files))
	for i := range files {
		a := assignments[files[i].Path]
		a.PathIndex = poolResult.PathIndex[i]
		plan.Assignments[i] = a
	}
	plan.StringPool = poolResult.Compressed

	return plan, nil
}

// solidBlockGroup returns the dictionary group shared by every file in a
// SOLID block, or "" if the files disagree on group or the group has no
// trained dictionary in dictionaries.
func solidBlockGroup(refs []PlannedFileRef, dictionaries map[string][]byte) string {
	if len(refs) == 0 {
		return ""
	}

	group := refs[0].Input.DictionaryGroup
	if group == "" {
		return ""
	}
	if _, ok := dictionaries[group]; !ok {
		return ""
	}

	for _, ref := range refs[1:] {
		if ref.Input.DictionaryGroup != group {
			return ""
		}
	}

	return group
}

// validateChunkSize rejects a cfg.ChunkSize that isn't a power of two in
// [512 B, 1 TiB]. BuildPlan chunks files using this value verbatim, but the
// on-disk header only stores its log2, which would silently floor a
// non-power-of-two value to the next lower power of two on unpack — better
// to reject it up front than to corrupt chunk-boundary math invisibly.
func validateChunkSize(size uint64) error {
	if size == 0 || size&(size-1) != 0 {
		return errs.NewInvalidConfig("ChunkSize", "%d is not a power of two", size)
	}

	log2 := log2Floor(size)
	if log2 < format.MinChunkSizeLog2 || log2 > format.MaxChunkSizeLog2 {
		return errs.NewInvalidConfig("ChunkSize", "%d is outside the supported range [%d, %d]", size, uint64(1)<<format.MinChunkSizeLog2, uint64(1)<<format.MaxChunkSizeLog2)
	}

	return nil
}

func chunkCount(size, chunkSize uint64) uint64 {
	if chunkSize == 0 {
		return 0
	}

	return (size + chunkSize - 1) / chunkSize
}

// hashFiles reads and XXH3-64-hashes the full content of every file at or
// under solidBlockSize (the only files dedup applies to), returning a
// fingerprint keyed by path.
func hashFiles(files []*InputFile, solidBlockSize uint64) (map[string]dedup.Fingerprint, error) {
	fingerprints := make(map[string]dedup.Fingerprint, len(files))

	for _, f := range files {
		if f.Size > solidBlockSize || f.Size == 0 {
			continue
		}

		r, err := f.Open()
		if err != nil {
			return nil, errs.NewIoError("open", err)
		}

		h := hash.NewStreaming()
		_, err = io.Copy(h, r)
		closeErr := r.Close()
		if err != nil {
			return nil, errs.NewIoError("read", err)
		}
		if closeErr != nil {
			return nil, errs.NewIoError("close", closeErr)
		}

		fingerprints[f.Path] = dedup.Fingerprint{Hash: h.Sum64(), Size: f.Size}
	}

	return fingerprints, nil
}
