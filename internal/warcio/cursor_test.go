package warcio

import (
	"bytes"
	"io"
	"testing"
)

func TestReadLineCRLF(t *testing.T) {
	c := NewBufferCursor(bytes.NewBufferString("WARC/1.0\r\nWARC-Type: warcinfo\r\n\r\n"), 0)
	l, err := c.ReadLine(4096)
	if err != nil {
		t.Fatal(err)
	}
	if string(l) != "WARC/1.0" {
		t.Fatalf("got %q", l)
	}
	l, _ = c.ReadLine(4096)
	if string(l) != "WARC-Type: warcinfo" {
		t.Fatalf("got %q", l)
	}
	l, _ = c.ReadLine(4096)
	if len(l) != 0 {
		t.Fatal("expected blank line terminating headers")
	}
}

func TestReadLineTooLong(t *testing.T) {
	big := bytes.Repeat([]byte("a"), 1<<20)
	c := NewBufferCursor(bytes.NewReader(append(big, '\r', '\n')), 0)
	_, err := c.ReadLine(1024)
	if err != ErrLineTooLong {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}

func TestPeekByteDoesNotConsume(t *testing.T) {
	c := NewBufferCursor(bytes.NewBufferString("abc"), 0)
	b, err := c.PeekByte()
	if err != nil || b != 'a' {
		t.Fatalf("peek: %v %v", b, err)
	}
	b, err = c.ReadByte()
	if err != nil || b != 'a' {
		t.Fatalf("read: %v %v", b, err)
	}
}

// smallChunkReader yields its contents across multiple Read calls,
// exercising the cursor's compact/refill discipline with a buffer much
// smaller than the input.
type smallChunkReader struct {
	chunks [][]byte
	i, off int
}

func (s *smallChunkReader) Read(p []byte) (int, error) {
	for s.i < len(s.chunks) && s.off >= len(s.chunks[s.i]) {
		s.i++
		s.off = 0
	}
	if s.i >= len(s.chunks) {
		return 0, io.EOF
	}
	n := copy(p, s.chunks[s.i][s.off:])
	s.off += n
	return n, nil
}

func TestBufferReuseAcrossFills(t *testing.T) {
	src := &smallChunkReader{chunks: [][]byte{
		[]byte("WARC/1.0\r\n"),
		[]byte("WARC-Type: resource\r\n\r\n"),
		[]byte("body-bytes"),
	}}
	c := NewBufferCursor(src, 16)
	l, err := c.ReadLine(4096)
	if err != nil {
		t.Fatal(err)
	}
	if string(l) != "WARC/1.0" {
		t.Fatalf("got %q", l)
	}
	l, err = c.ReadLine(4096)
	if err != nil {
		t.Fatal(err)
	}
	if string(l) != "WARC-Type: resource" {
		t.Fatalf("got %q", l)
	}
}

func TestEndOfInputOnEmptyChannel(t *testing.T) {
	c := NewBufferCursor(bytes.NewReader(nil), 0)
	_, err := c.ReadByte()
	if err != ErrEndOfInput {
		t.Fatalf("expected ErrEndOfInput, got %v", err)
	}
}

func TestReadSomeDrainsBufferedPrefixFirst(t *testing.T) {
	c := NewBufferCursor(bytes.NewBufferString("xyz"), 0)
	// prime the buffer
	if _, err := c.PeekByte(); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, 3)
	n, err := c.ReadSome(dst)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if n != 3 || string(dst) != "xyz" {
		t.Fatalf("got %q (%d)", dst[:n], n)
	}
}
