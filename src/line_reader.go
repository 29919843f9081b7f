package freedvtnc

import (
	"bytes"
	"errors"
	"io"
)

// MaxLineLength is the longest command line accepted, terminator excluded.
const MaxLineLength = 4096

const readChunkSize = 1024

// ErrLineTooLong is returned once for each line that exceeds the maximum length.
// The rest of that line, up to its newline, is thrown away.
var ErrLineTooLong = errors.New("line too long")

// LineReader splits a byte stream into newline terminated lines.
//
// A partial line is held until its newline arrives, however many reads
// that takes.  A trailing \r is removed.  A partial line left over when the
// stream ends is dropped, never returned.
type LineReader struct {
	r          io.Reader
	buf        []byte
	chunk      []byte
	max        int
	discarding bool
	err        error
}

func NewLineReader(r io.Reader, maxLength int) *LineReader {
	if maxLength <= 0 {
		maxLength = MaxLineLength
	}

	return &LineReader{ //nolint:exhaustruct
		r:     r,
		chunk: make([]byte, readChunkSize),
		max:   maxLength,
	}
}

// ReadLine returns the next complete line.  At the end of the stream it
// returns the reader's error, io.EOF for a clean close.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		var i = bytes.IndexByte(lr.buf, '\n')
		if i >= 0 {
			var line = string(bytes.TrimSuffix(lr.buf[:i], []byte{'\r'}))
			var rest = copy(lr.buf, lr.buf[i+1:])
			lr.buf = lr.buf[:rest]

			if lr.discarding {
				lr.discarding = false

				continue
			}

			if len(line) > lr.max {
				return "", ErrLineTooLong
			}

			return line, nil
		}

		if len(lr.buf) > lr.max {
			lr.buf = lr.buf[:0]

			if !lr.discarding {
				lr.discarding = true

				return "", ErrLineTooLong
			}
		}

		if lr.err != nil {
			return "", lr.err
		}

		var n, err = lr.r.Read(lr.chunk)
		lr.buf = append(lr.buf, lr.chunk[:n]...)

		if err != nil {
			lr.err = err
		}
	}
}
