package proto

import (
	"io"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Request is one parsed request. It is built once per connection and never
// modified afterwards; accessors hand out copies.
type Request struct {
	line    RequestLine
	header  Header
	body    string
	hasBody bool
}

// NewRequest assembles a Request. A nil body means the request carried none.
func NewRequest(line RequestLine, header Header, body *string) *Request {
	req := &Request{line: line, header: slices.Clone(header)}
	if body != nil {
		req.body, req.hasBody = *body, true
	}
	return req
}

func (r *Request) Line() RequestLine { return r.line }
func (r *Request) Method() Method    { return r.line.Method }
func (r *Request) URI() string       { return r.line.URI }
func (r *Request) Version() string   { return r.line.Version }
func (r *Request) Header() Header    { return slices.Clone(r.header) }

// Body reports the request body and whether one was present.
func (r *Request) Body() (string, bool) { return r.body, r.hasBody }

// ReadRequest parses a request line, the header section and whatever body
// bytes arrived along with them. Body framing by Content-Length is not
// done: the body is exactly what the reader has buffered once the blank line
// is consumed. io.EOF means the peer closed before sending anything.
func ReadRequest(lr *LineReader) (*Request, error) {
	first, err := lr.ReadLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrap(err, "request line")
	}
	slog.Debug("request line", "line", first)

	line, err := ParseRequestLine(first)
	if err != nil {
		return nil, err
	}

	header, err := ReadHeader(lr)
	if err != nil {
		return nil, errors.Wrap(err, "request header")
	}

	var body *string
	if rest := lr.Remaining(); len(rest) > 0 {
		if !utf8.Valid(rest) {
			return nil, errors.Wrap(ErrInvalidUTF8, "request body")
		}
		s := string(rest)
		body = &s
		slog.Debug("request body", "len", len(s))
	}
	return NewRequest(line, header, body), nil
}
