package proto

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseRequestLine(t *testing.T) {
	cases := []struct {
		description string
		line        string
		expected    RequestLine
		err         error
	}{
		{
			description: "get",
			line:        "GET /index.html HTTP/1.0",
			expected:    RequestLine{Method: MethodGet, URI: "/index.html", Version: "HTTP/1.0"},
		},
		{
			description: "post with extra whitespace",
			line:        "POST \t /handler   HTTP/1.1 ",
			expected:    RequestLine{Method: MethodPost, URI: "/handler", Version: "HTTP/1.1"},
		},
		{
			description: "version is not validated",
			line:        "GET / whatever",
			expected:    RequestLine{Method: MethodGet, URI: "/", Version: "whatever"},
		},
		{
			description: "trailing tokens ignored",
			line:        "GET / HTTP/1.0 junk",
			expected:    RequestLine{Method: MethodGet, URI: "/", Version: "HTTP/1.0"},
		},
		{description: "empty", line: "", err: ErrMissingMethod},
		{description: "no uri", line: "GET", err: ErrMissingURI},
		{description: "no version", line: "GET /", err: ErrMissingVersion},
		{description: "head", line: "HEAD / HTTP/1.0", err: ErrUnsupportedMethod},
		{description: "lower case get", line: "get / HTTP/1.0", err: ErrUnsupportedMethod},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := ParseRequestLine(c.line)
			if c.err != nil {
				require.True(t, errors.Is(err, c.err), "got %v", err)
				require.True(t, IsSyntax(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, got)
		})
	}
}

func TestParseHeaderLine(t *testing.T) {
	e, err := ParseHeaderLine("Host: example.com: 8080")
	require.NoError(t, err)
	require.Equal(t, HeaderEntry{Key: "Host", Value: "example.com: 8080"}, e)

	e, err = ParseHeaderLine("X-Empty: ")
	require.NoError(t, err)
	require.Equal(t, HeaderEntry{Key: "X-Empty"}, e)

	_, err = ParseHeaderLine("Host:example.com")
	require.True(t, errors.Is(err, ErrMalformedHeader))
	require.Contains(t, err.Error(), "Host:example.com")
}

func TestReadRequest(t *testing.T) {
	raw := "GET /a?b=c HTTP/1.0\r\n" +
		"Accept: text/html\r\n" +
		"X-Dup: 1\r\n" +
		"Host: localhost\r\n" +
		"X-Dup: 2\r\n" +
		"\r\n"
	req, err := ReadRequest(NewLineReader(strings.NewReader(raw)))
	require.NoError(t, err)

	wantLine := RequestLine{Method: MethodGet, URI: "/a?b=c", Version: "HTTP/1.0"}
	if diff := cmp.Diff(wantLine, req.Line()); diff != "" {
		t.Fatalf("request line mismatch (-want +got):\n%s", diff)
	}
	wantHeader := Header{
		{Key: "Accept", Value: "text/html"},
		{Key: "X-Dup", Value: "1"},
		{Key: "Host", Value: "localhost"},
		{Key: "X-Dup", Value: "2"},
	}
	if diff := cmp.Diff(wantHeader, req.Header()); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"1", "2"}, req.Header().Values("x-dup"))
	v, ok := req.Header().Get("HOST")
	require.True(t, ok)
	require.Equal(t, "localhost", v)

	_, hasBody := req.Body()
	require.False(t, hasBody)
}

func TestReadRequestBody(t *testing.T) {
	raw := "POST /handler HTTP/1.0\r\nContent-Length: 5\r\n\r\nhello"
	req, err := ReadRequest(NewLineReader(strings.NewReader(raw)))
	require.NoError(t, err)
	require.Equal(t, MethodPost, req.Method())
	body, ok := req.Body()
	require.True(t, ok)
	require.Equal(t, "hello", body)
}

func TestRequestIsImmutable(t *testing.T) {
	body := "x"
	h := Header{{Key: "A", Value: "1"}}
	req := NewRequest(RequestLine{Method: MethodGet, URI: "/", Version: "HTTP/1.0"}, h, &body)

	h[0].Value = "changed"
	body = "changed"
	got := req.Header()
	got[0].Value = "changed again"

	v, _ := req.Header().Get("A")
	require.Equal(t, "1", v)
	b, _ := req.Body()
	require.Equal(t, "x", b)
}

func TestReadRequestErrors(t *testing.T) {
	cases := []struct {
		description string
		raw         string
		expected    error
	}{
		{"malformed header", "GET / HTTP/1.0\r\nNoSeparator\r\n\r\n", ErrMalformedHeader},
		{"headers never end", "GET / HTTP/1.0\r\nHost: x\r\n", ErrUnterminatedHeaders},
		{"unsupported method", "PUT / HTTP/1.0\r\n\r\n", ErrUnsupportedMethod},
		{"no version", "GET /\r\n\r\n", ErrMissingVersion},
		{"unterminated request line", "GET / HTTP/1.0", ErrUnterminatedLine},
		{"bad utf-8 in header", "GET / HTTP/1.0\r\nA: \xfe\r\n\r\n", ErrInvalidUTF8},
		{"bad utf-8 in body", "POST / HTTP/1.0\r\n\r\n\xfe\xff", ErrInvalidUTF8},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			_, err := ReadRequest(NewLineReader(strings.NewReader(c.raw)))
			require.True(t, errors.Is(err, c.expected), "got %v", err)
		})
	}
}

func TestReadRequestEmptyStream(t *testing.T) {
	_, err := ReadRequest(NewLineReader(strings.NewReader("")))
	require.Equal(t, io.EOF, err)
}
