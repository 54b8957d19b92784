package warcrec

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/andycostintoma/warc/internal/warcio"
)

// DefaultMaxLineBytes bounds a single version or header line, so a
// malformed stream with no CRLF in sight cannot exhaust memory. Used
// whenever a caller does not set ReaderLimits.MaxLineBytes.
const DefaultMaxLineBytes = 64 * 1024

// ReaderLimits is the struct-of-knobs a Reader is configured with,
// mirroring the teacher's ParseLimits/HeaderLimits shape: a caller passes
// the values it cares about and leaves the rest at their zero value,
// which NewReaderWithLimits fills in with defaults.
type ReaderLimits struct {
	// MaxLineBytes bounds a single version or header line. Zero means
	// DefaultMaxLineBytes.
	MaxLineBytes int
}

func (l ReaderLimits) maxLineBytes() int {
	if l.MaxLineBytes > 0 {
		return l.MaxLineBytes
	}
	return DefaultMaxLineBytes
}

// Reader is a lazy, finite sequence of records from a single byte
// channel. It enforces that the previously yielded record's body is
// drained before the next is produced, and is poisoned — permanently
// failing — after any fatal error, per §4.6.
type Reader struct {
	cursor       *warcio.BufferCursor
	lastBody     *warcio.LengthedBody
	gen          int
	position     int64
	poisoned     bool
	poisonErr    error
	maxLineBytes int
}

// NewReader wraps ch (a raw WARC stream, or a decompressed byte channel
// such as a warcio.GzipMemberChannel) in a Reader with default limits.
func NewReader(ch warcio.ByteChannel) *Reader {
	return NewReaderWithLimits(ch, ReaderLimits{})
}

// NewReaderWithLimits is NewReader with an explicit ReaderLimits, for
// callers that need to raise or lower the line-length cap — e.g. a
// warcidx.Config.MaxHeaderBytes override.
func NewReaderWithLimits(ch warcio.ByteChannel, limits ReaderLimits) *Reader {
	return &Reader{
		cursor:       warcio.NewBufferCursor(ch, warcio.DefaultBufSize),
		maxLineBytes: limits.maxLineBytes(),
	}
}

// Position returns the byte offset in the source at which the record most
// recently returned by Next began — the stable pointer CaptureIndex
// stores. A record whose header parsed but failed an invariant check
// (Next returned an *InvariantError without poisoning) also updates it.
func (r *Reader) Position() int64 { return r.position }

// Poisoned reports whether a prior PARSE_ERROR, UNEXPECTED_EOF, channel
// failure, or missing/unparseable Content-Length has permanently failed
// this reader. A false result after an error from Next means that error
// was an invariant violation on an otherwise well-framed record, and Next
// may be called again.
func (r *Reader) Poisoned() bool { return r.poisoned }

func (r *Reader) poison(err error) error {
	r.poisoned = true
	r.poisonErr = err
	return err
}

// Next returns the next record, or io.EOF once the stream is exhausted at
// a clean record boundary. A grammar failure (*ParseError) or a stream
// that ends mid-record (ErrUnexpectedEOF) poisons the reader: every
// subsequent call returns the same error. A header that parses cleanly
// but fails a field invariant (*InvariantError) — other than an unusable
// Content-Length — does not poison the reader; Next may be called again
// to skip past it.
func (r *Reader) Next() (*Record, error) {
	if r.poisoned {
		return nil, r.poisonErr
	}

	if r.lastBody != nil {
		if err := r.lastBody.Close(); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrUnexpectedEOF
			}
			return nil, r.poison(err)
		}
		r.lastBody = nil
	}
	r.gen++
	gen := r.gen

	startOffset := r.cursor.Offset()

	versionLine, err := r.cursor.ReadLine(r.maxLineBytes)
	if err != nil {
		if errors.Is(err, warcio.ErrEndOfInput) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, r.poison(ErrUnexpectedEOF)
		}
		return nil, r.poison(parseErrorf(startOffset, "reading version line: %v", err))
	}

	version, err := parseVersionLine(startOffset, string(versionLine))
	if err != nil {
		return nil, r.poison(err)
	}

	header := NewHeader()
	for {
		line, err := r.cursor.ReadLine(r.maxLineBytes)
		if err != nil {
			if errors.Is(err, warcio.ErrEndOfInput) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, r.poison(ErrUnexpectedEOF)
			}
			return nil, r.poison(parseErrorf(r.cursor.Offset(), "reading header block: %v", err))
		}
		if len(line) == 0 {
			break
		}
		name, value, ok := splitHeaderLine(string(line))
		if !ok {
			return nil, r.poison(parseErrorf(r.cursor.Offset(), "malformed header line: %q", line))
		}
		if !isValidFieldToken(name) {
			return nil, r.poison(parseErrorf(r.cursor.Offset(), "invalid header field name: %q", name))
		}
		header.Add(name, value)
	}

	clStr, ok := header.Get(ContentLength)
	if !ok {
		return nil, r.poison(invariantErrorf(ContentLength, "missing mandatory header"))
	}
	contentLength, perr := strconv.ParseInt(strings.TrimSpace(clStr), 10, 64)
	if perr != nil || contentLength < 0 {
		return nil, r.poison(invariantErrorf(ContentLength, "not a non-negative integer: %q", clStr))
	}

	body := warcio.NewLengthedBody(r.cursor, contentLength, func() bool { return r.gen != gen })
	record := NewRecord(version, header, body)

	// Content-Length is known at this point, so the body's bounds — and
	// therefore the next record's start — are recoverable even if some
	// other mandatory field fails validation. Unlike a grammar or framing
	// failure, this does not poison the reader: the caller may call Next
	// again, which drains this record's body and trailer exactly as it
	// would for a record accepted outright.
	r.lastBody = body
	r.position = startOffset

	if err := validate(record); err != nil {
		return nil, err
	}

	return record, nil
}

// parseVersionLine parses "WARC/<major>.<minor>".
func parseVersionLine(offset int64, line string) (ProtocolVersion, error) {
	const prefix = "WARC/"
	if !strings.HasPrefix(line, prefix) {
		return ProtocolVersion{}, parseErrorf(offset, "expected WARC version line, got %q", line)
	}
	rest := line[len(prefix):]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return ProtocolVersion{}, parseErrorf(offset, "malformed WARC version: %q", line)
	}
	major, err1 := strconv.Atoi(rest[:dot])
	minor, err2 := strconv.Atoi(rest[dot+1:])
	if err1 != nil || err2 != nil || major < 0 || minor < 0 {
		return ProtocolVersion{}, parseErrorf(offset, "malformed WARC version numbers: %q", line)
	}
	return ProtocolVersion{Major: uint8(major), Minor: uint8(minor)}, nil
}

// isValidFieldToken reports whether s is usable as a WARC header field
// name: non-empty, no colon, no control bytes.
func isValidFieldToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' || c < 0x21 || c == 0x7f {
			return false
		}
	}
	return true
}
