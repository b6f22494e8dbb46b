package importer

import (
	"errors"
	"io/fs"
	"os"
)

// Validate checks that path exists, is a regular file and can be opened for
// reading. The file is closed again immediately.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ImportError{Kind: KindFileNotFound, Path: path, Err: err}
		}
		return &ImportError{Kind: KindNotReadable, Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return &ImportError{Kind: KindNotAFile, Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return &ImportError{Kind: KindNotReadable, Path: path, Err: err}
	}
	return f.Close()
}
