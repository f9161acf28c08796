package proto

import (
	"strings"

	"github.com/pkg/errors"
)

type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// ParseMethod accepts only the methods this server dispatches.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodGet, MethodPost:
		return m, nil
	}
	return "", errors.Wrapf(ErrUnsupportedMethod, "%q", s)
}

// RequestLine is the first line of a request. URI is the raw target,
// query string included.
type RequestLine struct {
	Method  Method
	URI     string
	Version string
}

// ParseRequestLine splits line on runs of whitespace. Tokens after the
// version are ignored and the version itself is not validated.
func ParseRequestLine(line string) (RequestLine, error) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return RequestLine{}, ErrMissingMethod
	}
	method, err := ParseMethod(fields[0])
	if err != nil {
		return RequestLine{}, err
	}
	if len(fields) < 2 {
		return RequestLine{}, errors.Wrapf(ErrMissingURI, "%q", line)
	}
	if len(fields) < 3 {
		return RequestLine{}, errors.Wrapf(ErrMissingVersion, "%q", line)
	}
	return RequestLine{Method: method, URI: fields[1], Version: fields[2]}, nil
}

func (rl RequestLine) String() string {
	return string(rl.Method) + " " + rl.URI + " " + rl.Version
}
