package warcrec

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Builder constructs a record with mandatory defaults already populated —
// a freshly generated WARC-Record-ID, WARC-Date set to "now", and
// Content-Length set to 0 — then exposes fluent setters for the
// type-specific well-known headers. Calling Body atomically updates
// Content-Type and Content-Length.
type Builder struct {
	version ProtocolVersion
	header  *Header
	body    []byte
}

// NewBuilder seeds WARC-Type and the mandatory defaults. now is injected
// rather than read from the clock, keeping Builder deterministic for
// tests; callers typically pass time.Now().
func NewBuilder(recordType string, now time.Time) *Builder {
	b := &Builder{version: V1_1, header: NewHeader()}
	b.header.Set(WarcType, recordType)
	b.header.Set(WarcRecordID, NewRecordIDURN())
	b.header.Set(WarcDate, now.UTC().Format(time.RFC3339))
	b.header.Set(ContentLength, "0")
	return b
}

// NewRecordIDURN generates a fresh WARC-Record-ID in the canonical
// "<urn:uuid:...>" form.
func NewRecordIDURN() string {
	return AddAngleBrackets("urn:uuid:" + uuid.New().String())
}

// Version overrides the default WARC/1.1 version line.
func (b *Builder) Version(v ProtocolVersion) *Builder {
	b.version = v
	return b
}

// SetHeader sets name to a single value, canonical casing as given.
func (b *Builder) SetHeader(name, value string) *Builder {
	b.header.Set(name, value)
	return b
}

// AddHeader appends an additional value for a repeatable field (e.g.
// WARC-Concurrent-To).
func (b *Builder) AddHeader(name, value string) *Builder {
	b.header.Add(name, value)
	return b
}

// TargetURI sets WARC-Target-URI.
func (b *Builder) TargetURI(uri string) *Builder {
	b.header.Set(WarcTargetURI, uri)
	return b
}

// RefersTo sets WARC-Refers-To to the given record-ID, wrapped in the
// urn:uuid angle-bracket convention if not already.
func (b *Builder) RefersTo(recordID string) *Builder {
	b.header.Set(WarcRefersTo, AddAngleBrackets(recordID))
	return b
}

// ConcurrentTo appends a WARC-Concurrent-To value.
func (b *Builder) ConcurrentTo(recordID string) *Builder {
	b.header.Add(WarcConcurrentTo, AddAngleBrackets(recordID))
	return b
}

// WarcinfoID sets WARC-Warcinfo-ID.
func (b *Builder) WarcinfoID(recordID string) *Builder {
	b.header.Set(WarcWarcinfoID, AddAngleBrackets(recordID))
	return b
}

// BlockDigest sets WARC-Block-Digest.
func (b *Builder) BlockDigest(d Digest) *Builder {
	b.header.Set(WarcBlockDigest, d.String())
	return b
}

// PayloadDigest sets WARC-Payload-Digest.
func (b *Builder) PayloadDigest(d Digest) *Builder {
	b.header.Set(WarcPayloadDigest, d.String())
	return b
}

// Truncated sets WARC-Truncated to one of the closed set of reasons.
func (b *Builder) Truncated(reason string) *Builder {
	b.header.Set(WarcTruncated, reason)
	return b
}

// SegmentNumber sets WARC-Segment-Number.
func (b *Builder) SegmentNumber(n int) *Builder {
	b.header.Set(WarcSegmentNumber, strconv.Itoa(n))
	return b
}

// Profile sets WARC-Profile (revisit records).
func (b *Builder) Profile(uri string) *Builder {
	b.header.Set(WarcProfile, uri)
	return b
}

// Body stores the body bytes and atomically updates Content-Type and
// Content-Length.
func (b *Builder) Body(contentType string, content []byte) *Builder {
	b.body = content
	b.header.Set(ContentType, contentType)
	b.header.Set(ContentLength, strconv.Itoa(len(content)))
	return b
}

// Header exposes the header map under construction, for callers that need
// to inspect it before Write.
func (b *Builder) Header() *Header { return b.header }

// countingWriter tallies bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes the record to w: the version line, headers in
// insertion order with canonical casing, a blank line, the body bytes,
// and the fixed two-CRLF trailer. It raises ErrInvariant if
// Content-Length disagrees with the provided body length.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	declared, ok := b.header.Get(ContentLength)
	if !ok {
		return 0, invariantErrorf(ContentLength, "missing mandatory header")
	}
	n, err := strconv.ParseInt(declared, 10, 64)
	if err != nil || n < 0 {
		return 0, invariantErrorf(ContentLength, "not a non-negative integer: %q", declared)
	}
	if n != int64(len(b.body)) {
		return 0, invariantErrorf(ContentLength, "declared %d disagrees with body length %d", n, len(b.body))
	}

	cw := &countingWriter{w: w}
	if _, err := fmt.Fprintf(cw, "%s\r\n", b.version); err != nil {
		return cw.n, err
	}
	if err := b.header.Write(cw); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write([]byte("\r\n")); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write(b.body); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write([]byte("\r\n\r\n")); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// --- Type-specific builders ---------------------------------------------

func NewWarcinfoRecord(now time.Time) *Builder {
	return NewBuilder(TypeWarcinfo, now)
}

func NewRequestRecord(now time.Time) *Builder {
	b := NewBuilder(TypeRequest, now)
	b.header.Set(ContentType, "application/http;msgtype=request")
	return b
}

func NewResponseRecord(now time.Time) *Builder {
	b := NewBuilder(TypeResponse, now)
	b.header.Set(ContentType, "application/http;msgtype=response")
	return b
}

func NewResourceRecord(now time.Time) *Builder {
	return NewBuilder(TypeResource, now)
}

func NewRevisitRecord(now time.Time, profile string) *Builder {
	b := NewBuilder(TypeRevisit, now)
	b.header.Set(WarcProfile, profile)
	return b
}

func NewConversionRecord(now time.Time) *Builder {
	return NewBuilder(TypeConversion, now)
}

func NewContinuationRecord(now time.Time, segmentNumber int) *Builder {
	b := NewBuilder(TypeContinuation, now)
	b.header.Set(WarcSegmentNumber, strconv.Itoa(segmentNumber))
	return b
}

func NewMetadataRecord(now time.Time) *Builder {
	return NewBuilder(TypeMetadata, now)
}
