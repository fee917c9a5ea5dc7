package pack

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Sewer56/sewer56-archives-nx/dict"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/internal/hash"
	"github.com/Sewer56/sewer56-archives-nx/toc"
	"github.com/Sewer56/sewer56-archives-nx/userdata"
)

// Pack runs the full pipeline (plan → execute → write) and emits a complete
// archive to path, using a temp file plus atomic rename so no partial
// archive is ever visible at path.
func Pack(ctx context.Context, files []InputFile, cfg Config, execCfg ExecutorConfig, preset format.TocVariant, path string) error {
	if preset == 0 {
		preset = format.TocPresetStandard
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nx-pack-*")
	if err != nil {
		return errs.NewIoError("create-temp", err)
	}
	tmpPath := tmp.Name()

	succeeded := false
	defer func() {
		tmp.Close()
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	if err := PackTo(ctx, tmp, files, cfg, execCfg, preset); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return errs.NewIoError("close", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errs.NewIoError("rename", err)
	}

	succeeded = true

	return nil
}

// PackTo runs plan → execute → write against an already-open writer,
// skipping the temp-file/rename dance Pack adds for on-disk archives. Used
// directly by tests and by callers writing to an in-memory buffer.
func PackTo(ctx context.Context, w io.Writer, files []InputFile, cfg Config, execCfg ExecutorConfig, preset format.TocVariant) error {
	plan, err := BuildPlan(files, cfg)
	if err != nil {
		return err
	}

	compressedBlocks, err := Execute(ctx, plan, cfg, execCfg)
	if err != nil {
		return err
	}

	entryCodec, err := toc.CodecFor(preset)
	if err != nil {
		return err
	}

	hashes, err := hashesFor(files, preset)
	if err != nil {
		return err
	}

	// Entries are stored in string-pool order (entry i has PathIndex i),
	// which is how the unpacker maps a path to its entry.
	entries := make([]toc.FileEntry, len(plan.Assignments))
	for _, a := range plan.Assignments {
		entries[a.PathIndex] = toc.FileEntry{
			HasHash:                 preset != format.TocPresetNoHash,
			Hash:                    hashes[a.Path],
			DecompressedSize:        a.Size,
			DecompressedBlockOffset: a.DecompressedBlockOffset,
			PathIndex:               a.PathIndex,
			FirstBlockIndex:         a.FirstBlockIndex,
		}
	}

	blocks := make([]toc.Block, len(compressedBlocks))
	for i, cb := range compressedBlocks {
		blocks[i] = toc.Block{
			CompressedSize: cb.CompressedSize,
			Compression:    format.CompressionTag(cb.Compression),
		}
	}

	tocHeader := toc.Header{
		Variant:                  preset,
		FileCount:                uint32(len(entries)),
		BlockCount:               uint32(len(blocks)),
		StringPoolCompressedSize: uint32(len(plan.StringPool)),
	}

	tocBytes := toc.Encode(tocHeader, entryCodec, entries, blocks, plan.StringPool)

	dictSection, err := buildDictionarySection(plan.DictionaryGroups, cfg.Dictionaries)
	if err != nil {
		return err
	}

	var userDataBytes []byte
	if len(cfg.UserData) > 0 {
		userDataBytes, err = userdata.Encode(cfg.UserData, cfg.Level)
		if err != nil {
			return err
		}
	}

	layout := Layout{
		FileHeader: toc.FileHeader{
			FormatVersion:   format.FormatVersionCurrent,
			ChunkSizeLog2:   log2Floor(cfg.ChunkSize),
			HeaderPageCount: headerPageCount(len(tocBytes), dictSection, userDataBytes),
			HasDictionary:   dictSection != nil,
			HasUserData:     userDataBytes != nil,
		},
		TocBytes:         tocBytes,
		Dictionary:       dictSection,
		UserData:         userDataBytes,
		CompressedBlocks: compressedBlocks,
	}

	_, err = Write(w, layout)

	return err
}

// headerPageCount returns the number of 4096-byte pages needed to hold the
// file header, TOC region, and optional dictionary/user-data sections,
// matching writer.Write's own 8-byte section alignment.
func headerPageCount(tocSize int, dictSection *dict.Section, userData []byte) uint8 {
	total := format.FileHeaderSize + tocSize

	if dictSection != nil {
		total = alignUp(total, 8)

		encoded, err := dict.Encode(*dictSection)
		if err == nil {
			total += len(encoded)
		}
	}

	if userData != nil {
		total = alignUp(total, 8)
		total += len(userData)
	}

	return uint8((total + format.PageSize - 1) / format.PageSize)
}

func alignUp(n, align int) int {
	rem := n % align
	if rem == 0 {
		return n
	}

	return n + (align - rem)
}

// buildDictionarySection assembles a dict.Section from the planner's
// per-block group assignments and the caller-supplied trained dictionary
// bytes, run-length encoding consecutive blocks that share a dictionary (or
// share "no dictionary"). Returns nil if no block used a dictionary.
func buildDictionarySection(blockGroups []string, dictionaries map[string][]byte) (*dict.Section, error) {
	if len(dictionaries) == 0 {
		return nil, nil
	}

	used := false
	for _, g := range blockGroups {
		if g != "" {
			used = true
			break
		}
	}
	if !used {
		return nil, nil
	}

	groupIndex := make(map[string]uint8)
	var groupOrder []string
	for _, g := range blockGroups {
		if g == "" {
			continue
		}
		if _, ok := groupIndex[g]; !ok {
			groupIndex[g] = uint8(len(groupOrder))
			groupOrder = append(groupOrder, g)
		}
	}
	if len(groupOrder) > format.MaxDictionaries {
		return nil, errs.NewMalformedArchive("dictionary group count %d exceeds max %d", len(groupOrder), format.MaxDictionaries)
	}

	sizes := make([]uint32, len(groupOrder))
	hashes := make([]uint64, len(groupOrder))
	var payload []byte
	for i, g := range groupOrder {
		bytes := dictionaries[g]
		sizes[i] = uint32(len(bytes))
		hashes[i] = hash.Sum64(bytes)
		payload = append(payload, bytes...)
	}

	var mappings []dict.Mapping
	dictIdxFor := func(g string) uint8 {
		if g == "" {
			return format.NoDictionary
		}

		return groupIndex[g]
	}

	for i := 0; i < len(blockGroups); {
		idx := dictIdxFor(blockGroups[i])

		runLen := 0
		for i < len(blockGroups) && dictIdxFor(blockGroups[i]) == idx && runLen < 255 {
			runLen++
			i++
		}

		mappings = append(mappings, dict.Mapping{DictIndex: idx, BlockRunLen: uint8(runLen)})
	}

	return &dict.Section{
		Mappings: mappings,
		Sizes:    sizes,
		Hashes:   hashes,
		Payload:  payload,
	}, nil
}

func hashesFor(files []InputFile, preset format.TocVariant) (map[string]uint64, error) {
	if preset == format.TocPresetNoHash {
		return nil, nil
	}

	out := make(map[string]uint64, len(files))
	for i := range files {
		f := &files[i]
		if f.Size == 0 {
			out[f.Path] = hash.Sum64(nil)
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

		out[f.Path] = h.Sum64()
	}

	return out, nil
}

func log2Floor(v uint64) uint8 {
	var n uint8
	for v > 1 {
		v >>= 1
		n++
	}

	return n
}
