package warcrec

import (
	"strconv"
	"time"

	"github.com/andycostintoma/warc/internal/warcio"
)

// Known WARC-Type tags.
const (
	TypeWarcinfo     = "warcinfo"
	TypeRequest      = "request"
	TypeResponse     = "response"
	TypeResource     = "resource"
	TypeRevisit      = "revisit"
	TypeConversion   = "conversion"
	TypeContinuation = "continuation"
	TypeMetadata     = "metadata"
)

var captureTypes = map[string]bool{
	TypeResponse: true,
	TypeResource: true,
	TypeRevisit:  true,
}

// Record is the common carrier for every WARC record: a version, a header
// multi-map, and a body view. Semantically-named accessors for
// well-known fields live here so that any record — known type or
// otherwise — can be inspected uniformly; the typed variants below exist
// for type-switch ergonomics and variant-specific helpers (e.g. chunked
// HTTP payload decoding on request/response records).
type Record struct {
	version ProtocolVersion
	header  *Header
	body    *warcio.LengthedBody
}

// NewRecord constructs a Record from already-parsed parts. Used by
// RecordReader after a successful header parse, and by Builder.Build.
func NewRecord(version ProtocolVersion, header *Header, body *warcio.LengthedBody) *Record {
	return &Record{version: version, header: header, body: body}
}

func (r *Record) Version() ProtocolVersion { return r.version }
func (r *Record) Header() *Header          { return r.header }
func (r *Record) Body() *warcio.LengthedBody { return r.body }

// Type returns the record's WARC-Type.
func (r *Record) Type() (string, error) {
	v, ok, err := r.header.Sole(WarcType)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invariantErrorf(WarcType, "missing mandatory header")
	}
	return v, nil
}

// RecordID returns WARC-Record-ID with its angle brackets stripped.
func (r *Record) RecordID() (string, error) {
	v, ok, err := r.header.Sole(WarcRecordID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invariantErrorf(WarcRecordID, "missing mandatory header")
	}
	return StripAngleBrackets(v), nil
}

// Date returns WARC-Date parsed as an RFC-3339 instant.
func (r *Record) Date() (time.Time, error) {
	v, ok, err := r.header.Sole(WarcDate)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, invariantErrorf(WarcDate, "missing mandatory header")
	}
	t, perr := time.Parse(time.RFC3339, v)
	if perr != nil {
		return time.Time{}, invariantErrorf(WarcDate, "not RFC-3339: %v", perr)
	}
	return t, nil
}

// ContentLength returns the declared Content-Length.
func (r *Record) ContentLength() (int64, error) {
	v, ok, err := r.header.Sole(ContentLength)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invariantErrorf(ContentLength, "missing mandatory header")
	}
	n, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil || n < 0 {
		return 0, invariantErrorf(ContentLength, "not a non-negative integer: %q", v)
	}
	return n, nil
}

// TargetURI returns WARC-Target-URI with angle brackets stripped, and
// whether it was present at all.
func (r *Record) TargetURI() (string, bool) {
	v, ok := r.header.Get(WarcTargetURI)
	if !ok {
		return "", false
	}
	return StripAngleBrackets(v), true
}

// ContentTypeValue returns the record's Content-Type, without the
// ";msgtype=..." parameter, and whether it was present.
func (r *Record) ContentTypeValue() (string, bool) {
	v, ok := r.header.Get(ContentType)
	if !ok {
		return "", false
	}
	return contentTypeBase(v), true
}

// IsHTTPMessage reports whether Content-Type indicates the body is itself
// an HTTP message ("application/http", optionally with ";msgtype=...").
func (r *Record) IsHTTPMessage() bool {
	ct, ok := r.ContentTypeValue()
	return ok && ct == "application/http"
}

// Truncated returns the WARC-Truncated reason, validated against the
// closed set {length, time, disconnect, unspecified}, and whether the
// header was present (absent means NOT_TRUNCATED).
func (r *Record) Truncated() (string, bool, error) {
	v, ok := r.header.Get(WarcTruncated)
	if !ok {
		return "", false, nil
	}
	if !isValidTruncationReason(v) {
		return "", true, invariantErrorf(WarcTruncated, "not one of the closed set: %q", v)
	}
	return v, true, nil
}

// SegmentNumber returns WARC-Segment-Number, if present.
func (r *Record) SegmentNumber() (int, bool, error) {
	v, ok := r.header.Get(WarcSegmentNumber)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, true, invariantErrorf(WarcSegmentNumber, "not a positive integer: %q", v)
	}
	return n, true, nil
}

// RefersTo returns WARC-Refers-To with angle brackets stripped, if
// present (revisit, conversion, metadata records).
func (r *Record) RefersTo() (string, bool) {
	v, ok := r.header.Get(WarcRefersTo)
	if !ok {
		return "", false
	}
	return StripAngleBrackets(v), true
}

// ConcurrentTo returns every WARC-Concurrent-To value, with angle
// brackets stripped.
func (r *Record) ConcurrentTo() []string {
	vals := r.header.Values(WarcConcurrentTo)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = StripAngleBrackets(v)
	}
	return out
}

// BlockDigest parses WARC-Block-Digest, if present.
func (r *Record) BlockDigest() (Digest, bool, error) {
	return r.digestField(WarcBlockDigest)
}

// PayloadDigest parses WARC-Payload-Digest, if present.
func (r *Record) PayloadDigest() (Digest, bool, error) {
	return r.digestField(WarcPayloadDigest)
}

func (r *Record) digestField(name string) (Digest, bool, error) {
	v, ok := r.header.Get(name)
	if !ok {
		return Digest{}, false, nil
	}
	d, err := ParseDigest(v)
	if err != nil {
		return Digest{}, true, err
	}
	return d, true, nil
}

// Profile returns WARC-Profile, if present (revisit records).
func (r *Record) Profile() (string, bool) {
	return r.header.Get(WarcProfile)
}

// WarcinfoID returns WARC-Warcinfo-ID with angle brackets stripped, if
// present.
func (r *Record) WarcinfoID() (string, bool) {
	v, ok := r.header.Get(WarcWarcinfoID)
	if !ok {
		return "", false
	}
	return StripAngleBrackets(v), true
}

// validate enforces the mandatory-header and capture-record invariants of
// §3 against an already header-parsed Record. It does not check
// Content-Length against the actual body length — that is the reader's
// and writer's job, since only they see both the declared and actual
// byte counts.
func validate(r *Record) error {
	kind, err := r.Type()
	if err != nil {
		return err
	}
	if _, err := r.RecordID(); err != nil {
		return err
	}
	if _, err := r.Date(); err != nil {
		return err
	}
	if _, err := r.ContentLength(); err != nil {
		return err
	}
	if captureTypes[kind] {
		if _, ok := r.TargetURI(); !ok {
			return invariantErrorf(WarcTargetURI, "required for %s records", kind)
		}
	}
	if _, _, err := r.Truncated(); err != nil {
		return err
	}
	if _, _, err := r.SegmentNumber(); err != nil {
		return err
	}
	return nil
}

// --- Typed variants -----------------------------------------------------
//
// Thin wrappers around *Record for type-switch ergonomics and
// variant-specific helpers, matching the closed set plus Unknown(tag)
// catch-all.

type WarcinfoRecord struct{ *Record }
type RequestRecord struct{ *Record }
type ResponseRecord struct{ *Record }
type ResourceRecord struct{ *Record }
type RevisitRecord struct{ *Record }
type ConversionRecord struct{ *Record }
type ContinuationRecord struct{ *Record }
type MetadataRecord struct{ *Record }

// UnknownRecord preserves forward compatibility with WARC-Type values
// this core does not specifically model; Tag carries the raw value.
type UnknownRecord struct {
	*Record
	Tag string
}

// Dispatch selects the typed variant for r by its WARC-Type, returning
// one of the wrapper types above. r.Type() must already have succeeded;
// Dispatch re-derives it and returns the error if not.
func Dispatch(r *Record) (any, error) {
	kind, err := r.Type()
	if err != nil {
		return nil, err
	}
	switch kind {
	case TypeWarcinfo:
		return WarcinfoRecord{r}, nil
	case TypeRequest:
		return RequestRecord{r}, nil
	case TypeResponse:
		return ResponseRecord{r}, nil
	case TypeResource:
		return ResourceRecord{r}, nil
	case TypeRevisit:
		return RevisitRecord{r}, nil
	case TypeConversion:
		return ConversionRecord{r}, nil
	case TypeContinuation:
		return ContinuationRecord{r}, nil
	case TypeMetadata:
		return MetadataRecord{r}, nil
	default:
		return UnknownRecord{Record: r, Tag: kind}, nil
	}
}
