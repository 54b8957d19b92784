package warcio

import (
	"errors"
	"io"
)

// ErrBodyInvalidated is returned by a body view once its owning reader has
// advanced past it. A body is an exclusive borrow of the cursor; reading it
// after the borrow ends is a programming error, not an I/O failure, but
// this package surfaces it as an error rather than panicking.
var ErrBodyInvalidated = errors.New("warcio: body read after reader advanced")

// LengthedBody is a read-only view bounded by a declared byte count,
// backed by a BufferCursor's shared buffer and channel. It drains any
// residual prefetched bytes belonging to it before reading further from
// the channel.
type LengthedBody struct {
	cursor    *BufferCursor
	remaining int64
	closed    bool
	invalid   func() bool
}

// NewLengthedBody returns a view over exactly length bytes. invalid, if
// non-nil, is polled on every operation and reports whether the owning
// reader has moved on (e.g. because Next was called again).
func NewLengthedBody(cursor *BufferCursor, length int64, invalid func() bool) *LengthedBody {
	return &LengthedBody{cursor: cursor, remaining: length, invalid: invalid}
}

// Remaining reports how many of the declared body bytes have not been
// consumed yet.
func (b *LengthedBody) Remaining() int64 { return b.remaining }

func (b *LengthedBody) checkLive() error {
	if b.invalid != nil && b.invalid() {
		return ErrBodyInvalidated
	}
	return nil
}

// Read implements io.Reader, returning up to min(len(p), remaining) bytes.
func (b *LengthedBody) Read(p []byte) (int, error) {
	if err := b.checkLive(); err != nil {
		return 0, err
	}
	if b.closed || b.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.cursor.ReadSome(p)
	b.remaining -= int64(n)
	if err == io.EOF && b.remaining > 0 {
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}

// Close drains any unread bytes plus the mandatory CRLF CRLF trailer.
// Readers MUST invoke Close (or rely on RecordReader.Next's implicit
// drain) before the next record is requested.
func (b *LengthedBody) Close() error {
	if b.closed {
		return nil
	}
	if err := b.checkLive(); err != nil {
		return err
	}
	var scratch [4096]byte
	for b.remaining > 0 {
		take := int64(len(scratch))
		if take > b.remaining {
			take = b.remaining
		}
		n, err := b.cursor.ReadSome(scratch[:take])
		b.remaining -= int64(n)
		if err != nil && err != io.EOF {
			return err
		}
		if err == io.EOF && b.remaining > 0 {
			return io.ErrUnexpectedEOF
		}
	}
	b.closed = true
	return consumeTrailer(b.cursor)
}

// consumeTrailer consumes the fixed CRLF CRLF that terminates every
// well-formed record on the wire.
func consumeTrailer(c *BufferCursor) error {
	var want [4]byte
	var got [4]byte
	want[0], want[1], want[2], want[3] = '\r', '\n', '\r', '\n'
	for i := range got {
		b, err := c.ReadByte()
		if err != nil {
			if errors.Is(err, ErrEndOfInput) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		got[i] = b
	}
	if got != want {
		return errors.New("warcio: malformed record trailer")
	}
	return nil
}
