package importer

// reader.go reads delimited records with a backslash escape character,
// which encoding/csv does not support.
//
// Besides escapes, the reader:
//
//   - Skips a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools
//   - Replaces invalid UTF-8 bytes with U+FFFD instead of failing
//   - Accepts "\n", "\r\n" and "\r" line endings
//
// Memory use is one record; the file is never loaded whole.

import (
	"bufio"
	"io"
	"strings"
)

const (
	defaultComma  = ','
	defaultEscape = '\\'
	quote         = '"'
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type readState int

const (
	stateStartRecord readState = iota
	stateStartField
	stateInField
	stateEscapeInField
	stateInQuoted
	stateEscapeInQuoted
	stateQuoteInQuoted
)

// RecordReader reads records from delimited text.
//
// Quoting follows the common CSV dialect: a field starting with '"' is
// quoted, '""' inside it is a literal quote, and delimiters and line breaks
// inside it are data. The escape character makes the next character literal
// in both quoted and unquoted fields.
type RecordReader struct {
	// Comma is the field delimiter (default ',').
	Comma rune
	// Escape is the escape character (default '\\').
	Escape rune

	r          *bufio.Reader
	bomChecked bool
	record     int
}

// NewRecordReader returns a reader with the default delimiter and escape.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{
		Comma:  defaultComma,
		Escape: defaultEscape,
		r:      bufio.NewReader(r),
	}
}

// Records returns the number of records returned so far, blank lines included.
func (rr *RecordReader) Records() int {
	return rr.record
}

// Read returns the next record. A blank line yields an empty, non-nil record.
// At end of input Read returns nil, io.EOF.
func (rr *RecordReader) Read() ([]string, error) {
	if !rr.bomChecked {
		rr.bomChecked = true
		if err := rr.skipBOM(); err != nil {
			return nil, err
		}
	}

	var (
		fields []string
		field  strings.Builder
		state  = stateStartRecord
	)

	saveField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}

	for {
		c, err := rr.readRune()
		if err == io.EOF {
			switch state {
			case stateStartRecord:
				return nil, io.EOF
			case stateEscapeInField, stateEscapeInQuoted:
				field.WriteRune(rr.Escape)
			}
			saveField()
			rr.record++
			return fields, nil
		}
		if err != nil {
			return nil, err
		}

		switch state {
		case stateStartRecord:
			if c == '\n' || c == '\r' {
				if err := rr.endLine(c); err != nil {
					return nil, err
				}
				rr.record++
				return []string{}, nil
			}
			state = stateStartField
			fallthrough

		case stateStartField:
			switch c {
			case quote:
				state = stateInQuoted
			case rr.Escape:
				state = stateEscapeInField
			case rr.Comma:
				saveField()
			case '\n', '\r':
				saveField()
				return rr.finish(fields, c)
			default:
				field.WriteRune(c)
				state = stateInField
			}

		case stateInField:
			switch c {
			case rr.Escape:
				state = stateEscapeInField
			case rr.Comma:
				saveField()
				state = stateStartField
			case '\n', '\r':
				saveField()
				return rr.finish(fields, c)
			default:
				field.WriteRune(c)
			}

		case stateEscapeInField:
			field.WriteRune(c)
			state = stateInField

		case stateInQuoted:
			switch c {
			case rr.Escape:
				state = stateEscapeInQuoted
			case quote:
				state = stateQuoteInQuoted
			case '\r':
				if err := rr.endLine(c); err != nil {
					return nil, err
				}
				field.WriteRune('\n')
			default:
				field.WriteRune(c)
			}

		case stateEscapeInQuoted:
			field.WriteRune(c)
			state = stateInQuoted

		case stateQuoteInQuoted:
			switch c {
			case quote:
				field.WriteRune(quote)
				state = stateInQuoted
			case rr.Comma:
				saveField()
				state = stateStartField
			case '\n', '\r':
				saveField()
				return rr.finish(fields, c)
			default:
				// Text after a closing quote is kept, as lenient CSV readers do.
				field.WriteRune(c)
				state = stateInField
			}
		}
	}
}

func (rr *RecordReader) finish(fields []string, eol rune) ([]string, error) {
	if err := rr.endLine(eol); err != nil {
		return nil, err
	}
	rr.record++
	return fields, nil
}

// endLine consumes the '\n' of a "\r\n" pair.
func (rr *RecordReader) endLine(eol rune) error {
	if eol != '\r' {
		return nil
	}
	next, _, err := rr.r.ReadRune()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if next != '\n' {
		return rr.r.UnreadRune()
	}
	return nil
}

// readRune returns utf8.RuneError for each invalid byte.
func (rr *RecordReader) readRune() (rune, error) {
	c, _, err := rr.r.ReadRune()
	return c, err
}

func (rr *RecordReader) skipBOM() error {
	head, err := rr.r.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, err = rr.r.Discard(len(utf8BOM))
		return err
	}
	return nil
}
