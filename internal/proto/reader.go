package proto

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// MaxLineLength bounds a single request or header line, terminator included.
const MaxLineLength = 8 << 10

// LineReader yields CRLF-terminated lines from a byte stream. It knows
// nothing about HTTP.
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	if casted, ok := r.(*bufio.Reader); ok {
		return &LineReader{r: casted}
	}
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its trailing CRLF. A bare '\n' or
// '\r' is kept as part of the line. io.EOF is returned only when the stream
// ends cleanly on a line boundary; ending mid-line yields ErrUnterminatedLine.
func (lr *LineReader) ReadLine() (string, error) {
	var buf []byte
	sawCR := false
	for {
		b, err := lr.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				if len(buf) == 0 {
					return "", io.EOF
				}
				return "", errors.Wrapf(ErrUnterminatedLine, "%q", buf)
			}
			return "", errors.Wrap(err, "read line")
		}
		buf = append(buf, b)
		if b == '\n' && sawCR {
			line := buf[:len(buf)-2]
			if !utf8.Valid(line) {
				return "", errors.Wrapf(ErrInvalidUTF8, "%q", line)
			}
			return string(line), nil
		}
		if len(buf) >= MaxLineLength {
			return "", errors.Wrapf(ErrLineTooLong, "%d bytes", len(buf))
		}
		sawCR = b == '\r'
	}
}

// Remaining drains whatever the reader has already buffered without
// blocking on the underlying stream.
func (lr *LineReader) Remaining() []byte {
	n := lr.r.Buffered()
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	// Reading at most Buffered() bytes never touches the source.
	n, _ = lr.r.Read(b)
	return b[:n]
}
