package proto

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

const headerSep = ": "

type HeaderEntry struct {
	Key   string
	Value string
}

// Header keeps entries in the order received. Repeated keys are not merged.
type Header []HeaderEntry

// Get returns the value of the first entry whose key matches, ignoring case.
func (h Header) Get(key string) (string, bool) {
	for _, e := range h {
		if strings.EqualFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under key, in order.
func (h Header) Values(key string) []string {
	var vals []string
	for _, e := range h {
		if strings.EqualFold(e.Key, key) {
			vals = append(vals, e.Value)
		}
	}
	return vals
}

// ParseHeaderLine splits line on the first ": ".
func ParseHeaderLine(line string) (HeaderEntry, error) {
	key, val, ok := strings.Cut(line, headerSep)
	if !ok {
		return HeaderEntry{}, errors.Wrapf(ErrMalformedHeader, "%q", line)
	}
	return HeaderEntry{Key: key, Value: val}, nil
}

// ReadHeader consumes header lines up to and including the first empty one.
func ReadHeader(lr *LineReader) (Header, error) {
	h := Header{}
	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			return nil, ErrUnterminatedHeaders
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			return h, nil
		}
		e, err := ParseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		slog.Debug("header", "key", e.Key, "val", e.Value)
		h = append(h, e)
	}
}
