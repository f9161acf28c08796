package proto

import "github.com/pkg/errors"

// Framing errors.
var (
	ErrUnterminatedLine = errors.New("unterminated line")
	ErrInvalidUTF8      = errors.New("invalid utf-8 sequence")
	ErrLineTooLong      = errors.New("line too long")
)

// Syntax errors.
var (
	ErrMissingMethod       = errors.New("no method found in request line")
	ErrUnsupportedMethod   = errors.New("unsupported method")
	ErrMissingURI          = errors.New("no uri found in request line")
	ErrMissingVersion      = errors.New("no version found in request line")
	ErrMalformedHeader     = errors.New("no value found in header")
	ErrUnterminatedHeaders = errors.New("no request header found")
)

// IsFraming reports whether err came from the line framing layer rather than
// from HTTP syntax.
func IsFraming(err error) bool {
	return errors.Is(err, ErrUnterminatedLine) ||
		errors.Is(err, ErrInvalidUTF8) ||
		errors.Is(err, ErrLineTooLong)
}

// IsSyntax reports whether err is a request-line or header syntax error.
func IsSyntax(err error) bool {
	for _, target := range []error{
		ErrMissingMethod, ErrUnsupportedMethod, ErrMissingURI,
		ErrMissingVersion, ErrMalformedHeader, ErrUnterminatedHeaders,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
