package pack

import (
	"io"

	"github.com/Sewer56/sewer56-archives-nx/dict"
	"github.com/Sewer56/sewer56-archives-nx/format"
	"github.com/Sewer56/sewer56-archives-nx/internal/errs"
	"github.com/Sewer56/sewer56-archives-nx/toc"
)

// Layout is everything the writer needs to emit the final byte-exact
// archive: the file header, the already-encoded TOC region
// (header+entries+blocks+pool — see toc.Encode), optional dictionary/
// user-data sections, and the compressed block payloads in block-index
// order.
type Layout struct {
	FileHeader       toc.FileHeader
	TocBytes         []byte // toc.Encode(header, entryCodec, entries, blocks, pool)
	Dictionary       *dict.Section
	UserData         []byte            // already-encoded UserDataSection bytes, or nil
	CompressedBlocks []CompressedBlock // ordered by BlockIndex
}

// Write serializes Layout to w with the archive's fixed section ordering and
// 4096-byte padding: FileHeader, TOC (header+entries+blocks+pool),
// optional DictionarySection, optional UserDataSection, zero padding to the
// next page boundary, then each block's compressed bytes with its own
// trailing zero padding to the next page boundary.
func Write(w io.Writer, l Layout) (int64, error) {
	var written int64

	writeAll := func(b []byte) error {
		n, err := w.Write(b)
		written += int64(n)
		if err != nil {
			return errs.NewIoError("write", err)
		}

		return nil
	}

	if err := writeAll(l.FileHeader.Encode()); err != nil {
		return written, err
	}

	if err := writeAll(l.TocBytes); err != nil {
		return written, err
	}

	if l.Dictionary != nil {
		if err := writeAll(zeroPadTo(int(written), 8)); err != nil {
			return written, err
		}

		dictBytes, err := dict.Encode(*l.Dictionary)
		if err != nil {
			return written, err
		}
		if err := writeAll(dictBytes); err != nil {
			return written, err
		}
	}

	if l.UserData != nil {
		if err := writeAll(zeroPadTo(int(written), 8)); err != nil {
			return written, err
		}
		if err := writeAll(l.UserData); err != nil {
			return written, err
		}
	}

	if err := writeAll(zeroPad(int(written))); err != nil {
		return written, err
	}

	for _, cb := range l.CompressedBlocks {
		if err := writeAll(cb.Bytes); err != nil {
			return written, err
		}
		if err := writeAll(zeroPad(int(written))); err != nil {
			return written, err
		}
	}

	return written, nil
}

// zeroPad returns the zero bytes needed to bring offset up to the next
// format.PageSize boundary.
func zeroPad(offset int) []byte {
	rem := offset % format.PageSize
	if rem == 0 {
		return nil
	}

	return make([]byte, format.PageSize-rem)
}

// zeroPadTo returns the zero bytes needed to bring offset up to the next
// multiple of align, matching the "8-byte-aligned header" requirement for
// the dictionary/user-data section starts.
func zeroPadTo(offset, align int) []byte {
	rem := offset % align
	if rem == 0 {
		return nil
	}

	return make([]byte, align-rem)
}
