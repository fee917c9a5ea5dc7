// Package archive implements the unpacking engine:
// memory-mapping an archive, parsing its header and table of contents, and
// decompressing arbitrary file subsets on demand.
package archive

import (
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/Sewer56/sewer56-archives-nx/dict"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/options"
	"github.com/Sewer56/sewer56-archives-nx/stringpool"
	"github.com/Sewer56/sewer56-archives-nx/toc"
	"github.com/Sewer56/sewer56-archives-nx/userdata"
)

// state tracks how far Open's parse sequence has progressed. A failure at
// any step leaves the Archive at the last successfully reached state.
type state int

const (
	stateMapped state = iota
	stateHeaderParsed
	stateTocParsed
	statePoolDecoded
	stateReady
)

// FileInfo is the public, read-only view of one archived file.
type FileInfo struct {
	Path    string
	Size    uint64
	Hash    uint64
	HasHash bool
}

// blockOwner records which file(s) a decoded block belongs to, derived once
// at Open time from the FileEntry array and the header's chunk size.
type blockOwner struct {
	chunked          bool
	decompressedSize uint64
	// solidEntries holds the entry indices sharing this block; used by
	// hardened validation and Get's SOLID decompression path.
	solidEntries []int
}

// Archive is a parsed, read-only view over a memory-mapped Nx archive.
// Methods on a Ready Archive are safe for concurrent use; the mapped region
// is shared read-only and never mutated after Open.
type Archive struct {
	state state

	data   []byte
	mapped mmap.MMap // nil when backed by an in-memory buffer (OpenBytes)
	file   *os.File  // nil when backed by an in-memory buffer

	fileHeader toc.FileHeader
	region     toc.Region
	entryCodec toc.EntryCodec

	paths     []string
	pathIndex map[string]int // path -> index into region.Entries / paths

	dictionary       *dict.Section
	dictionaryBounds []uint32 // precomputed once from dictionary.Mappings; see dict.Bounds
	userData         *userdata.Section

	dataStart    int     // file offset where block 0's compressed payload begins
	blockOffsets []int64 // file offset of each block's compressed payload
	blockOwners  []blockOwner

	cfg openConfig
}

// openConfig holds the resolved settings from Open's functional options.
type openConfig struct {
	hardened    bool
	verifyHash  bool
	concurrency int
	logger      *slog.Logger
}

// Option configures Open/OpenBytes. See WithHardened, WithHashVerification,
// and WithConcurrency.
type Option = options.Option[*openConfig]

// WithHardened toggles the structural validation pass (validateStructure)
// run during Open. Hardened mode is on by default; disabling it skips those
// checks for speed. The block range and overlap checks in locateBlocks run
// either way, and Get still performs the bounds checks needed to avoid an
// out-of-bounds read.
func WithHardened(enabled bool) Option {
	return options.NoError[*openConfig](func(c *openConfig) { c.hardened = enabled })
}

// WithHashVerification enables opportunistic XXH3-64 verification of every
// file's decompressed bytes against its stored hash during Get/Extract. Off
// by default — verification is opt-in because the magic-less zstd framing
// carries no in-frame checksum of its own.
func WithHashVerification(enabled bool) Option {
	return options.NoError[*openConfig](func(c *openConfig) { c.verifyHash = enabled })
}

// WithConcurrency sets the batch-extract task pool width. Zero
// (the default) detects the CPU count at Extract time.
func WithConcurrency(n int) Option {
	return options.New[*openConfig](func(c *openConfig) error {
		if n < 0 {
			return errs.NewMalformedArchive("concurrency must be >= 0, got %d", n)
		}
		c.concurrency = n

		return nil
	})
}

// WithLogger attaches a logger that receives a debug-level record per block
// decompressed by Get/Extract. Unset by default, matching Execute's own
// silent-unless-configured behavior on the pack side.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError[*openConfig](func(c *openConfig) { c.logger = logger })
}

// Open memory-maps the archive at path and runs the full parse sequence.
// Hardened validation is enabled by default.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIoError("open", err)
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()

		return nil, errs.NewIoError("mmap", err)
	}

	a := &Archive{data: []byte(mapped), mapped: mapped, file: f, state: stateMapped}

	if err := a.init(opts); err != nil {
		a.Close()

		return nil, err
	}

	return a, nil
}

// OpenBytes runs the same parse sequence over an already-in-memory archive
// buffer, for callers that built or received the bytes directly rather than
// a file on disk (e.g. a network fetch, or a round trip in tests).
func OpenBytes(data []byte, opts ...Option) (*Archive, error) {
	a := &Archive{data: data, state: stateMapped}

	if err := a.init(opts); err != nil {
		return nil, err
	}

	return a, nil
}

// Close unmaps the archive (a no-op for OpenBytes-backed archives) and
// closes the underlying file handle.
func (a *Archive) Close() error {
	var err error
	if a.mapped != nil {
		err = a.mapped.Unmap()
	}
	if a.file != nil {
		if closeErr := a.file.Close(); err == nil {
			err = closeErr
		}
	}

	return errs.NewIoError("close", err)
}

func (a *Archive) init(opts []Option) error {
	cfg := &openConfig{hardened: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}
	a.cfg = *cfg

	if err := a.parseHeader(); err != nil {
		return err
	}
	if err := a.parseToc(); err != nil {
		return err
	}
	if err := a.decodePool(); err != nil {
		return err
	}
	if err := a.parseOptionalSections(); err != nil {
		return err
	}
	if err := a.locateBlocks(); err != nil {
		return err
	}
	if a.cfg.hardened {
		if err := a.validateStructure(); err != nil {
			return err
		}
	}

	a.state = stateReady

	return nil
}

func (a *Archive) parseHeader() error {
	h, err := toc.DecodeFileHeader(a.data)
	if err != nil {
		return err
	}
	if h.FormatVersion != format.FormatVersionPreset {
		return errs.ErrUnsupportedFormat
	}

	headerRegionEnd := int(h.HeaderPageCount) * format.PageSize
	if headerRegionEnd > len(a.data) {
		return errs.ErrMalformedHeader
	}

	a.fileHeader = h
	a.state = stateHeaderParsed

	return nil
}

func (a *Archive) parseToc() error {
	region, err := toc.Decode(a.data[format.FileHeaderSize:])
	if err != nil {
		return err
	}

	codec, err := toc.CodecFor(region.Header.Variant)
	if err != nil {
		return err
	}

	a.region = region
	a.entryCodec = codec
	a.state = stateTocParsed

	return nil
}

func (a *Archive) decodePool() error {
	// The pool's decompressed size isn't stored as its own field in this
	// build's presets; a generous
	// capacity hint is enough since the zstd backend only uses it to
	// pre-size its output buffer, not to bound decoding.
	hint := int(a.region.Header.FileCount) * 48
	if hint < 64 {
		hint = 64
	}

	paths, err := stringpool.Decode(a.region.StringPoolCompressed, hint, a.region.Header.FileCount)
	if err != nil {
		return err
	}

	pathIndex := make(map[string]int, len(paths))
	for i, p := range paths {
		pathIndex[p] = i
	}

	a.paths = paths
	a.pathIndex = pathIndex
	a.state = statePoolDecoded

	return nil
}

// tocEncodedSize returns the byte length of the header+entries+blocks+pool
// region, used to locate the optional sections and the block payload start.
func (a *Archive) tocEncodedSize() int {
	return 8 + len(a.region.Entries)*a.entryCodec.EntrySize() + len(a.region.Blocks)*toc.BlockEntrySize + len(a.region.StringPoolCompressed)
}

func (a *Archive) parseOptionalSections() error {
	off := format.FileHeaderSize + a.tocEncodedSize()

	if a.fileHeader.HasDictionary {
		off = alignUp(off, 8)
		if off > len(a.data) {
			return errs.ErrMalformedHeader
		}

		section, err := dict.Decode(a.data[off:])
		if err != nil {
			return err
		}
		a.dictionary = &section
		a.dictionaryBounds = dict.Bounds(section.Mappings)

		encoded, err := dict.Encode(section)
		if err != nil {
			return err
		}
		off += len(encoded)
	}

	if a.fileHeader.HasUserData {
		off = alignUp(off, 8)
		if off > len(a.data) {
			return errs.ErrMalformedHeader
		}

		section, err := userdata.Decode(a.data[off:])
		if err != nil {
			return err
		}
		a.userData = &section
		off += 8 + len(section.Payload)
	}

	a.dataStart = alignUp(off, format.PageSize)

	return nil
}

// locateBlocks replays the writer's page-alignment bookkeeping (pack/writer.go)
// to compute each block's absolute file offset, and derives block ownership
// from the FileEntry array and the archive's chunk size.
func (a *Archive) locateBlocks() error {
	offsets := make([]int64, len(a.region.Blocks))
	cursor := int64(a.dataStart)
	for i, b := range a.region.Blocks {
		offsets[i] = cursor
		cursor += int64(b.CompressedSize)
		if rem := cursor % format.PageSize; rem != 0 {
			cursor += format.PageSize - rem
		}
	}
	if cursor > int64(len(a.data)) {
		return errs.NewMalformedArchive("block payload region extends past end of mapped archive")
	}

	chunkSize := format.ChunkSizeFromLog2(a.fileHeader.ChunkSizeLog2)

	owners := make([]blockOwner, len(a.region.Blocks))
	for i := range owners {
		owners[i].decompressedSize = 0
	}

	for entryIdx, e := range a.region.Entries {
		if e.DecompressedSize > chunkSize && chunkSize > 0 {
			count := (e.DecompressedSize + chunkSize - 1) / chunkSize
			for c := uint64(0); c < count; c++ {
				blockIdx := e.FirstBlockIndex + uint32(c)
				if int(blockIdx) >= len(owners) {
					return errs.NewMalformedArchive("entry %d references out-of-range block %d", entryIdx, blockIdx)
				}
				if owners[blockIdx].chunked || len(owners[blockIdx].solidEntries) > 0 {
					return errs.NewMalformedArchive("block %d claimed by more than one file", blockIdx)
				}

				length := chunkSize
				if c == count-1 {
					if rem := e.DecompressedSize % chunkSize; rem != 0 {
						length = rem
					}
				}

				owners[blockIdx] = blockOwner{chunked: true, decompressedSize: length, solidEntries: []int{entryIdx}}
			}

			continue
		}

		blockIdx := e.FirstBlockIndex
		if int(blockIdx) >= len(owners) {
			return errs.NewMalformedArchive("entry %d references out-of-range block %d", entryIdx, blockIdx)
		}
		if owners[blockIdx].chunked {
			return errs.NewMalformedArchive("block %d claimed by both a chunked file and a SOLID file", blockIdx)
		}

		end := e.DecompressedBlockOffset + e.DecompressedSize
		if end > owners[blockIdx].decompressedSize {
			owners[blockIdx].decompressedSize = end
		}
		owners[blockIdx].solidEntries = append(owners[blockIdx].solidEntries, entryIdx)
	}

	a.blockOffsets = offsets
	a.blockOwners = owners

	return nil
}

// validateStructure runs the hardened-mode structural checks: in-range
// block indices (already enforced by locateBlocks), recognized
// compression tags, and compressed sizes that fit the mapped region.
func (a *Archive) validateStructure() error {
	for i, b := range a.region.Blocks {
		if !b.Compression.Valid() {
			return errs.NewMalformedArchive("block %d has unrecognized compression tag %d", i, b.Compression)
		}

		end := a.blockOffsets[i] + int64(b.CompressedSize)
		if end > int64(len(a.data)) {
			return errs.NewMalformedArchive("block %d's compressed bytes extend past the mapped region", i)
		}
	}

	for i, owner := range a.blockOwners {
		if !owner.chunked && len(owner.solidEntries) == 0 {
			return errs.NewMalformedArchive("block %d is never referenced by any file entry", i)
		}
	}

	return nil
}

func alignUp(offset, align int) int {
	rem := offset % align
	if rem == 0 {
		return offset
	}

	return offset + (align - rem)
}
