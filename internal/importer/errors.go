package importer

import (
	"errors"
	"fmt"
)

// Kind classifies an ImportError.
type Kind int

const (
	KindNoPath Kind = iota + 1
	KindFileNotFound
	KindNotAFile
	KindNotReadable
	KindInvalidPrice
	KindEmptyFile
)

func (k Kind) String() string {
	switch k {
	case KindNoPath:
		return "no path"
	case KindFileNotFound:
		return "file not found"
	case KindNotAFile:
		return "not a file"
	case KindNotReadable:
		return "not readable"
	case KindInvalidPrice:
		return "invalid price"
	case KindEmptyFile:
		return "empty file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ImportError is the error returned for import failures the importer
// detects itself. Storage errors are not wrapped in it.
type ImportError struct {
	Kind  Kind
	Path  string // File path, when known
	Value string // Offending field value, for row-level kinds
	Err   error  // Underlying cause, may be nil
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case KindNoPath:
		return "no file path supplied"
	case KindFileNotFound:
		return fmt.Sprintf("%s does not exist", e.Path)
	case KindNotAFile:
		return fmt.Sprintf("%s is not a file", e.Path)
	case KindNotReadable:
		return fmt.Sprintf("%s is not readable: %v", e.Path, e.Err)
	case KindInvalidPrice:
		return fmt.Sprintf("invalid price %q: %v", e.Value, e.Err)
	case KindEmptyFile:
		return fmt.Sprintf("%s is an empty file", e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.Path, e.Kind)
}

func (e *ImportError) Unwrap() error { return e.Err }

// IsKind reports whether err is or wraps an ImportError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Kind == kind
}
