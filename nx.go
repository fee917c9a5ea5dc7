// Package nx implements the Nx archive format: a semi-SOLID container that
// bundles many small files into shared compressed blocks while giving large
// files their own independently seekable chunk runs.
//
// # Core Features
//
//   - SOLID bundling of small files and independent chunking of large ones,
//     both driven by a single planner (see pack.BuildPlan)
//   - Parallel block compression on pack and parallel extraction on unpack
//   - A memory-mapped, read-only unpacking engine with hardened structural
//     validation (on by default) and opt-in XXH3-64 hash verification
//   - A compressor façade over Copy, ZStandard, LZ4, BZip3, and LZMA
//
// # Basic Usage
//
// Packing a set of files into an archive on disk:
//
//	files := []pack.InputFile{
//	    {Path: "readme.txt", Size: uint64(len(data)), Open: openReadme},
//	}
//	cfg := pack.Config{ChunkSize: 1 << 20, SolidBlockSize: 1 << 16, Algorithm: format.CompressionZStd, Level: 16}
//	err := nx.Pack(context.Background(), files, cfg, pack.ExecutorConfig{}, format.TocPresetStandard, "out.r3a")
//
// Reading it back:
//
//	a, err := nx.Open("out.r3a")
//	defer a.Close()
//	data, err := a.Get("readme.txt")
//
// # Package Structure
//
// This file provides the three consumer-facing operations — pack, open, and
// list/find/extract on the resulting Archive — as thin wrappers around the
// pack and archive packages. Advanced callers needing
// planner internals, custom executor concurrency, or direct TOC access should
// use those packages directly.
package nx

import (
	"context"
	"io"

	"github.com/Sewer56/sewer56-archives-nx/archive"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/pack"
)

// Archive is a parsed, read-only view over an opened Nx archive. See
// archive.Archive for the full method set.
type Archive = archive.Archive

// FileInfo is the public, read-only view of one archived file.
type FileInfo = archive.FileInfo

// ExtractResult pairs one requested path with its decompressed bytes or the
// error that prevented extraction.
type ExtractResult = archive.ExtractResult

// Option configures Open/OpenBytes. See archive.WithHardened,
// archive.WithHashVerification, archive.WithConcurrency, and
// archive.WithLogger.
type Option = archive.Option

// InputFile describes one file to pack. See pack.InputFile.
type InputFile = pack.InputFile

// Config configures the packing planner and executor. See pack.Config.
type Config = pack.Config

// ExecutorConfig controls the packing executor's task pool width. See
// pack.ExecutorConfig.
type ExecutorConfig = pack.ExecutorConfig

// Pack builds and writes a complete archive to path, using a temp file plus
// atomic rename so no partial archive is ever visible at path.
//
// Parameters:
//   - ctx: cancelled between blocks to abort a long-running pack
//   - files: the input files to bundle and chunk
//   - cfg: chunk size, SOLID bundle size, compression algorithm and level
//   - execCfg: task pool width; zero concurrency detects the CPU count
//   - preset: which fixed-width TOC variant to emit (format.TocPresetStandard
//     if the caller passes zero)
//   - path: destination file path
func Pack(ctx context.Context, files []InputFile, cfg Config, execCfg ExecutorConfig, preset format.TocVariant, path string) error {
	return pack.Pack(ctx, files, cfg, execCfg, preset, path)
}

// PackTo runs the same pipeline as Pack against an already-open writer,
// skipping the temp-file/rename dance — useful for packing directly into an
// in-memory buffer or a caller-managed file handle.
func PackTo(ctx context.Context, w io.Writer, files []InputFile, cfg Config, execCfg ExecutorConfig, preset format.TocVariant) error {
	return pack.PackTo(ctx, w, files, cfg, execCfg, preset)
}

// Open memory-maps the archive at path and parses its header, TOC, string
// pool, and optional sections. Hardened structural validation runs by
// default; pass archive.WithHardened(false) to skip it.
func Open(path string, opts ...Option) (*Archive, error) {
	return archive.Open(path, opts...)
}

// OpenBytes runs the same parse sequence over an already-in-memory archive
// buffer, for callers that built or fetched the bytes directly rather than a
// file on disk.
func OpenBytes(data []byte, opts ...Option) (*Archive, error) {
	return archive.OpenBytes(data, opts...)
}

// WithHardened toggles the hardened-mode structural validation pass. On by
// default.
func WithHardened(enabled bool) Option { return archive.WithHardened(enabled) }

// WithHashVerification enables opportunistic XXH3-64 verification of every
// file's decompressed bytes against its stored hash during Get/Extract.
func WithHashVerification(enabled bool) Option { return archive.WithHashVerification(enabled) }

// WithConcurrency sets the batch-extract task pool width. Zero (the default)
// detects the CPU count at Extract time.
func WithConcurrency(n int) Option { return archive.WithConcurrency(n) }
