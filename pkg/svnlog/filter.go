package svnlog

import (
	"bufio"
	"bytes"
	"io"
)

// FilterReader strips ASCII control characters other than tab, newline and
// carriage return, and replaces invalid UTF-8 with U+FFFD. XML parsers reject
// both, yet svn emits them verbatim from commit messages.
type FilterReader struct {
	src     *bufio.Reader
	pending []byte
	err     error
}

// NewFilterReader wraps r.
func NewFilterReader(r io.Reader) *FilterReader {
	return &FilterReader{src: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (f *FilterReader) Read(p []byte) (int, error) {
	for len(f.pending) == 0 {
		if f.err != nil {
			return 0, f.err
		}

		line, err := f.src.ReadBytes('\n')
		if err != nil {
			f.err = err
		}

		f.pending = clean(line)
	}

	n := copy(p, f.pending)
	f.pending = f.pending[n:]

	return n, nil
}

func clean(line []byte) []byte {
	line = bytes.ToValidUTF8(line, []byte("\uFFFD"))

	out := line[:0]

	for _, b := range line {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			continue
		}

		out = append(out, b)
	}

	return out
}
