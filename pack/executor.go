package pack

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Sewer56/sewer56-archives-nx/compress"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/pool"
)

// CompressedBlock is one task's output: the compressed bytes for a single
// block, ready for the writer to place at BlockIndex's slot.
type CompressedBlock struct {
	BlockIndex     uint32
	CompressedSize uint32
	Compression    uint8 // format.CompressionTag, kept numeric to avoid an import cycle with toc
	Bytes          []byte
}

// ExecutorConfig controls the bounded task pool's width.
type ExecutorConfig struct {
	// Concurrency is the number of blocks compressed in parallel. Zero means
	// "detect CPU count"; negative is invalid input the caller should not
	// pass. A constant 1 disables the detection entirely, for callers that
	// want single-threaded packing regardless of the host's CPU count.
	Concurrency int
	// Logger receives a debug-level record per compressed block, when set.
	// Execute never logs on its own otherwise.
	Logger *slog.Logger
}

// Execute compresses every block in plan using cfg's algorithm and level,
// returning CompressedBlock results ordered by BlockIndex. If any block fails,
// outstanding tasks are cancelled and the first error is returned wrapped in
// errs.BlockCompressionError.
func Execute(ctx context.Context, plan *Plan, cfg Config, execCfg ExecutorConfig) ([]CompressedBlock, error) {
	results := make([]CompressedBlock, len(plan.Blocks))

	concurrency := execCfg.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	codec, err := compress.ForTag(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, block := range plan.Blocks {
		i, block := i, block

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return errs.ErrCancelled
			default:
			}

			decompressed, err := readBlockBytes(block)
			if err != nil {
				return &errs.BlockCompressionError{BlockIndex: uint32(i), Inner: err}
			}

			var dictBytes []byte
			if i < len(plan.DictionaryGroups) {
				if group := plan.DictionaryGroups[i]; group != "" {
					dictBytes = cfg.Dictionaries[group]
				}
			}

			compressed, err := codec.Compress(decompressed, cfg.Level, dictBytes)
			if err != nil {
				return &errs.BlockCompressionError{BlockIndex: uint32(i), Inner: err}
			}

			if len(compressed) >= len(decompressed) {
				// Didn't shrink: fall back to Copy so the block is never
				// larger than its decompressed form.
				compressed = decompressed
				results[i] = CompressedBlock{
					BlockIndex:     uint32(i),
					CompressedSize: uint32(len(compressed)),
					Compression:    0, // format.CompressionCopy
					Bytes:          compressed,
				}

				logBlockCompressed(execCfg.Logger, uint32(i), len(decompressed), len(compressed), 0)

				return nil
			}

			results[i] = CompressedBlock{
				BlockIndex:     uint32(i),
				CompressedSize: uint32(len(compressed)),
				Compression:    uint8(cfg.Algorithm),
				Bytes:          compressed,
			}

			logBlockCompressed(execCfg.Logger, uint32(i), len(decompressed), len(compressed), uint8(cfg.Algorithm))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// logBlockCompressed emits one debug record per compressed block when the
// caller supplied a logger; a nil logger keeps Execute silent.
func logBlockCompressed(logger *slog.Logger, blockIndex uint32, decompressedSize, compressedSize int, tag uint8) {
	if logger == nil {
		return
	}

	logger.Debug("block compressed",
		slog.Int("block_index", int(blockIndex)),
		slog.Int("decompressed_size", decompressedSize),
		slog.Int("compressed_size", compressedSize),
		slog.Int("compression_tag", int(tag)),
	)
}

// readBlockBytes materializes the decompressed payload for one planned
// block: the concatenation of whole files for a SOLID block, or the byte
// range of one file for a chunk block.
func readBlockBytes(block BlockPlan) ([]byte, error) {
	switch block.Kind {
	case blockSolid:
		buf := pool.GetBlockBuffer()
		defer pool.PutBlockBuffer(buf)

		for _, ref := range block.Files {
			if ref.Input.Size == 0 {
				continue
			}

			r, err := ref.Input.Open()
			if err != nil {
				return nil, errs.NewIoError("open", err)
			}

			n, err := io.Copy(buf, io.LimitReader(r, int64(ref.Input.Size)))
			closeErr := r.Close()
			if err != nil {
				return nil, errs.NewIoError("read", err)
			}
			if closeErr != nil {
				return nil, errs.NewIoError("close", closeErr)
			}
			if uint64(n) != ref.Input.Size {
				return nil, errs.NewMalformedArchive("file %q: read %d bytes, expected %d", ref.Input.Path, n, ref.Input.Size)
			}
		}

		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())

		return out, nil

	case blockChunk:
		r, err := block.Chunk.Input.Open()
		if err != nil {
			return nil, errs.NewIoError("open", err)
		}
		defer r.Close()

		if block.Chunk.Offset > 0 {
			if seeker, ok := r.(io.Seeker); ok {
				if _, err := seeker.Seek(int64(block.Chunk.Offset), io.SeekStart); err != nil {
					return nil, errs.NewIoError("seek", err)
				}
			} else if _, err := io.CopyN(io.Discard, r, int64(block.Chunk.Offset)); err != nil {
				return nil, errs.NewIoError("seek", err)
			}
		}

		buf := pool.GetChunkBuffer()
		defer pool.PutChunkBuffer(buf)

		buf.Grow(int(block.Chunk.Length))
		buf.SetLength(int(block.Chunk.Length))

		if _, err := io.ReadFull(r, buf.Bytes()); err != nil {
			return nil, errs.NewIoError("read", err)
		}

		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())

		return out, nil

	default:
		return nil, errs.NewMalformedArchive("unknown block kind %d", block.Kind)
	}
}
