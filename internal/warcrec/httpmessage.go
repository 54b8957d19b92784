package warcrec

import (
	"io"
	"strconv"
	"strings"

	"github.com/andycostintoma/warc/internal/warcio"
)

// DefaultMaxHTTPHeaderLine bounds a single embedded-HTTP header or start
// line, mirroring the teacher's ParseLimits discipline. Used whenever a
// caller does not set HTTPMessageLimits.MaxLineBytes.
const DefaultMaxHTTPHeaderLine = 64 * 1024

// HTTPMessageLimits is the struct-of-knobs ParseHTTPMessageWithLimits is
// configured with, the same shape as ReaderLimits and the teacher's
// ParseLimits/HeaderLimits.
type HTTPMessageLimits struct {
	// MaxLineBytes bounds a single embedded-HTTP start or header line.
	// Zero means DefaultMaxHTTPHeaderLine.
	MaxLineBytes int
}

func (l HTTPMessageLimits) maxLineBytes() int {
	if l.MaxLineBytes > 0 {
		return l.MaxLineBytes
	}
	return DefaultMaxHTTPHeaderLine
}

// HTTPMessage is the embedded HTTP request or response carried by a
// request/response record whose Content-Type is "application/http" (§3,
// §4.4). Payload framing is resolved from the embedded headers:
// Transfer-Encoding: chunked gets a ChunkedBody, Content-Length gets a
// bounded reader, and anything else reads until the enclosing WARC body
// is exhausted.
type HTTPMessage struct {
	StartLine string
	Header    *Header
	Payload   io.Reader

	// RequestTarget is populated when StartLine is an HTTP request line;
	// nil for a response's status line.
	RequestTarget *RequestTarget
}

// ParseHTTPMessage parses the start line and header block of an embedded
// HTTP message from body with default line-length limits, then frames the
// payload per its own Transfer-Encoding/Content-Length headers.
func ParseHTTPMessage(body io.Reader) (*HTTPMessage, error) {
	return ParseHTTPMessageWithLimits(body, HTTPMessageLimits{})
}

// ParseHTTPMessageWithLimits is ParseHTTPMessage with an explicit
// HTTPMessageLimits, for callers that need to raise or lower the
// embedded-header line cap — e.g. a warcidx.Config.MaxHeaderBytes
// override.
func ParseHTTPMessageWithLimits(body io.Reader, limits HTTPMessageLimits) (*HTTPMessage, error) {
	maxLine := limits.maxLineBytes()
	cursor := warcio.NewBufferCursor(body, maxLine)

	startLine, err := cursor.ReadLine(maxLine)
	if err != nil {
		return nil, err
	}

	header := NewHeader()
	for {
		line, err := cursor.ReadLine(maxLine)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		name, value, ok := splitHeaderLine(string(line))
		if !ok {
			return nil, parseErrorf(cursor.Offset(), "malformed HTTP header line: %q", line)
		}
		header.Add(name, value)
	}

	payload, err := framePayload(cursor, header)
	if err != nil {
		return nil, err
	}

	msg := &HTTPMessage{StartLine: string(startLine), Header: header, Payload: payload}
	if isRequestStartLine(msg.StartLine) {
		fields := strings.Fields(msg.StartLine)
		if len(fields) >= 2 {
			target, err := ParseRequestTarget(fields[1])
			if err != nil {
				return nil, parseErrorf(cursor.Offset(), "embedded request-target: %v", err)
			}
			msg.RequestTarget = &target
		}
	}

	return msg, nil
}

func framePayload(cursor *warcio.BufferCursor, header *Header) (io.Reader, error) {
	if te, ok := header.Get("Transfer-Encoding"); ok && strings.EqualFold(te, "chunked") {
		return warcio.NewChunkedBody(cursor.AsReader()), nil
	}
	if cl, ok := header.Get(ContentLength); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return nil, invariantErrorf(ContentLength, "malformed embedded Content-Length %q", cl)
		}
		return warcio.NewLengthedBody(cursor, n, nil), nil
	}
	return cursor.AsReader(), nil
}

// splitHeaderLine splits "Name: value" on the first colon, trimming
// surrounding horizontal whitespace from the value. Line folding is not
// supported, matching §4.2.
func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", "", false
	}
	return line[:i], strings.Trim(line[i+1:], " \t"), true
}

// HTTPMessage parses the embedded HTTP message on a response record whose
// Content-Type is application/http; returns ErrInvariant if the record is
// not such a message.
func (r ResponseRecord) HTTPMessage() (*HTTPMessage, error) {
	return r.HTTPMessageWithLimits(HTTPMessageLimits{})
}

// HTTPMessageWithLimits is HTTPMessage with an explicit HTTPMessageLimits,
// for callers — e.g. warcidx, via Config.MaxHeaderBytes — that need to
// raise or lower the embedded-header line cap.
func (r ResponseRecord) HTTPMessageWithLimits(limits HTTPMessageLimits) (*HTTPMessage, error) {
	if !r.IsHTTPMessage() {
		return nil, invariantErrorf(ContentType, "response record payload is not application/http")
	}
	return ParseHTTPMessageWithLimits(r.Body(), limits)
}

// HTTPMessage parses the embedded HTTP request, analogous to
// ResponseRecord.HTTPMessage. When the record carries a WARC-Target-URI,
// the parsed request-target is also reconciled against it; a mismatch is
// reported as an *InvariantError rather than silently ignored, since a
// replay tool would otherwise serve the wrong capture under this record's
// own target URI.
func (r RequestRecord) HTTPMessage() (*HTTPMessage, error) {
	return r.HTTPMessageWithLimits(HTTPMessageLimits{})
}

// HTTPMessageWithLimits is HTTPMessage with an explicit HTTPMessageLimits.
func (r RequestRecord) HTTPMessageWithLimits(limits HTTPMessageLimits) (*HTTPMessage, error) {
	if !r.IsHTTPMessage() {
		return nil, invariantErrorf(ContentType, "request record payload is not application/http")
	}
	msg, err := ParseHTTPMessageWithLimits(r.Body(), limits)
	if err != nil {
		return nil, err
	}
	if msg.RequestTarget != nil {
		if captureURI, ok := r.TargetURI(); ok {
			host, _ := msg.Header.Get("Host")
			if err := msg.RequestTarget.ReconcileWithCaptureURI(captureURI, host); err != nil {
				return nil, err
			}
		}
	}
	return msg, nil
}
