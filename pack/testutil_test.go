package pack

import (
	"bytes"
	"io"
)

func memFile(path string, content []byte) InputFile {
	return InputFile{
		Path: path,
		Size: uint64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}
