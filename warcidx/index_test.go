package warcidx

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parsing time %q: %v", s, err)
	}
	return ts
}

func TestIndexQueryOrdersByInstantRegardlessOfInsertionOrder(t *testing.T) {
	idx := NewIndex()
	t1 := mustTime(t, "2024-01-01T00:00:00Z")
	t2 := mustTime(t, "2024-01-02T00:00:00Z")
	t3 := mustTime(t, "2024-01-03T00:00:00Z")

	idx.Insert(Capture{TargetURI: "http://a/", Instant: t2, File: "a.warc", Offset: 2}, false)
	idx.Insert(Capture{TargetURI: "http://a/", Instant: t1, File: "a.warc", Offset: 1}, false)
	idx.Insert(Capture{TargetURI: "http://a/", Instant: t3, File: "a.warc", Offset: 3}, false)

	got := idx.Query("http://a/")
	if len(got) != 3 {
		t.Fatalf("Query() returned %d captures; want 3", len(got))
	}
	if !got[0].Instant.Equal(t1) || !got[1].Instant.Equal(t2) || !got[2].Instant.Equal(t3) {
		t.Fatalf("Query() order = %v, %v, %v; want T1, T2, T3", got[0].Instant, got[1].Instant, got[2].Instant)
	}
}

func TestIndexQueryOnDifferentURIIsEmpty(t *testing.T) {
	idx := NewIndex()
	idx.Insert(Capture{TargetURI: "http://a/", Instant: mustTime(t, "2024-01-01T00:00:00Z")}, false)

	if got := idx.Query("http://b/"); len(got) != 0 {
		t.Fatalf("Query() on unrelated uri-key = %v; want empty", got)
	}
}

func TestEntrypointDeterminism(t *testing.T) {
	idx := NewIndex()
	idx.Insert(Capture{TargetURI: "http://x/", Instant: mustTime(t, "2024-01-01T00:00:00Z")}, false)
	idx.Insert(Capture{TargetURI: "http://y/", Instant: mustTime(t, "2024-01-01T00:01:00Z")}, true)
	idx.Insert(Capture{TargetURI: "http://z/", Instant: mustTime(t, "2024-01-01T00:02:00Z")}, true)

	ep, ok := idx.Entrypoint()
	if !ok {
		t.Fatalf("Entrypoint() not found")
	}
	if ep.TargetURI != "http://y/" {
		t.Fatalf("Entrypoint() = %q; want http://y/ (the first HTML capture)", ep.TargetURI)
	}
}

func TestEntrypointAbsentWithoutHTML(t *testing.T) {
	idx := NewIndex()
	idx.Insert(Capture{TargetURI: "http://x/", Instant: mustTime(t, "2024-01-01T00:00:00Z")}, false)

	if _, ok := idx.Entrypoint(); ok {
		t.Fatalf("Entrypoint() found one when no HTML capture was inserted")
	}
}

func TestIndexMergePreservesFileOrderSeeding(t *testing.T) {
	first := NewIndex()
	first.Insert(Capture{TargetURI: "http://a/", Instant: mustTime(t, "2024-01-01T00:00:00Z")}, true)

	second := NewIndex()
	second.Insert(Capture{TargetURI: "http://b/", Instant: mustTime(t, "2024-01-01T00:00:00Z")}, true)

	first.Merge(second)

	ep, ok := first.Entrypoint()
	if !ok || ep.TargetURI != "http://a/" {
		t.Fatalf("Entrypoint() after merge = %v, %v; want http://a/ (first index wins)", ep, ok)
	}
	if len(first.Query("http://b/")) != 1 {
		t.Fatalf("Query(http://b/) after merge did not find the merged capture")
	}
}
