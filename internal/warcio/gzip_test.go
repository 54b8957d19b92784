package warcio

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func gzipMember(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGzipMemberChannelConcatenatesMembers(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(gzipMember(t, "record-one "))
	stream.Write(gzipMember(t, "record-two"))

	ch := NewGzipMemberChannel(&stream)
	got, err := io.ReadAll(ch)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "record-one record-two" {
		t.Fatalf("got %q", got)
	}
}

func TestGzipMemberChannelStopsAtNonGzipData(t *testing.T) {
	ch := NewGzipMemberChannel(bytes.NewBufferString("not gzip"))
	got, err := io.ReadAll(ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no decoded bytes, got %q", got)
	}
}
