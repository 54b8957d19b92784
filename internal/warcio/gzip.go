package warcio

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the two-byte magic number at the start of a gzip stream.
var gzipMagic = [2]byte{0x1f, 0x8b}

// IsGzip peeks the first two bytes of r to decide whether it is gzip
// member data, without consuming them from r.
func IsGzip(r *bufio.Reader) (bool, error) {
	magic, err := r.Peek(2)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1], nil
}

// GzipMemberChannel adapts a stream of concatenated, independently
// gzip-compressed WARC records into a single ByteChannel: each record in a
// compressed WARC file is its own gzip member, and the record codec must
// see one continuous decompressed byte stream across member boundaries.
// This is the channel-adapter collaborator the core spec assumes exists;
// the record codec itself never knows whether it is reading compressed or
// raw bytes.
type GzipMemberChannel struct {
	src  *bufio.Reader
	cur  *gzip.Reader
	done bool
}

// NewGzipMemberChannel wraps r, decompressing successive gzip members
// transparently as each is exhausted.
func NewGzipMemberChannel(r io.Reader) *GzipMemberChannel {
	return &GzipMemberChannel{src: bufio.NewReader(r)}
}

// Read implements io.Reader, advancing to the next gzip member when the
// current one is exhausted.
func (g *GzipMemberChannel) Read(p []byte) (int, error) {
	if g.done {
		return 0, io.EOF
	}
	for {
		if g.cur == nil {
			isGzip, err := IsGzip(g.src)
			if err != nil {
				return 0, err
			}
			if !isGzip {
				g.done = true
				return 0, io.EOF
			}
			zr, err := gzip.NewReader(g.src)
			if err != nil {
				return 0, err
			}
			g.cur = zr
		}
		n, err := g.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			g.cur.Close()
			g.cur = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}
