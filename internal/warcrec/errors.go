package warcrec

import (
	"errors"
	"fmt"
)

// ErrParse covers malformed record grammar: the version line, the header
// block, and the start line and header lines of an embedded HTTP message.
// Always wrapped in a *ParseError carrying the byte offset at which the
// failure was detected. Bad chunk sizes are not reported under ErrParse
// (the chunked decoder returns warcio.ErrBadChunk), and neither are bad
// digest encodings (ParseDigest returns an *InvariantError).
var ErrParse = errors.New("warcrec: parse error")

// ErrUnexpectedEOF means the channel ended mid-record.
var ErrUnexpectedEOF = errors.New("warcrec: unexpected end of record stream")

// ErrInvariant covers a missing mandatory header, a declared length that
// disagrees with the actual body bytes, or a sole-value accessor finding
// multiple values.
var ErrInvariant = errors.New("warcrec: invariant violation")

// ErrReaderPoisoned names the state of a Reader that has hit a fatal
// error; readers do not recover. Reader.Next does not return this value:
// once poisoned, every later call returns the original fatal error again.
var ErrReaderPoisoned = errors.New("warcrec: reader poisoned by previous error")

// ParseError carries the stream offset at which a grammar violation was
// detected, per the core's error-handling design.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("warcrec: parse error at offset %d: %s", e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(offset int64, format string, args ...any) error {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// InvariantError names the header field that failed validation.
type InvariantError struct {
	Field string
	Msg   string
}

func (e *InvariantError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("warcrec: %s", e.Msg)
	}
	return fmt.Sprintf("warcrec: %s: %s", e.Field, e.Msg)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariantErrorf(field, format string, args ...any) error {
	return &InvariantError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
