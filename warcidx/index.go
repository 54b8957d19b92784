package warcidx

import (
	"sort"
	"sync"
)

// Index is an ordered multiset of Captures, keyed by (uriKey, instant) with
// ties broken by insertion order, plus a single entrypoint slot. It is
// safe for concurrent Insert calls, so BuildMany can fan out across files
// and merge into one Index without external locking.
type Index struct {
	mu         sync.Mutex
	byURI      map[string][]insertedCapture
	nextSeq    int
	entrypoint Capture
	hasEntry   bool
}

type insertedCapture struct {
	capture Capture
	seq     int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byURI: make(map[string][]insertedCapture)}
}

// Insert records c. isHTML indicates whether c's payload content-type
// (excluding parameters) is text/html; the first such capture across the
// index's lifetime becomes the entrypoint, and later HTML captures never
// displace it.
func (idx *Index) Insert(c Capture, isHTML bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := c.uriKey()
	idx.byURI[key] = append(idx.byURI[key], insertedCapture{capture: c, seq: idx.nextSeq})
	idx.nextSeq++

	if isHTML && !idx.hasEntry {
		idx.entrypoint = c
		idx.hasEntry = true
	}
}

// Query returns every capture whose uri-key equals uri's uri-key, in
// ascending instant order, with ties broken by the order they were
// inserted — the half-open-to-closed range bounded by (uriKey, MIN_INSTANT)
// and (uriKey, MAX_INSTANT).
func (idx *Index) Query(uri string) []Capture {
	idx.mu.Lock()
	entries := append([]insertedCapture(nil), idx.byURI[uri]...)
	idx.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entries[i].capture.Instant, entries[j].capture.Instant
		if ti.Equal(tj) {
			return entries[i].seq < entries[j].seq
		}
		return ti.Before(tj)
	})

	out := make([]Capture, len(entries))
	for i, e := range entries {
		out[i] = e.capture
	}
	return out
}

// Entrypoint returns the first HTML capture encountered during
// construction, if any.
func (idx *Index) Entrypoint() (Capture, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.entrypoint, idx.hasEntry
}

// Merge folds other's captures and entrypoint candidacy into idx,
// preserving relative insertion order within each index but appending
// other's entries after idx's own — used by BuildMany to combine one
// per-file Index per worker into a single result in file order.
func (idx *Index) Merge(other *Index) {
	other.mu.Lock()
	entrants := make([]insertedCapture, 0)
	for _, bucket := range other.byURI {
		entrants = append(entrants, bucket...)
	}
	otherEntry, otherHasEntry := other.entrypoint, other.hasEntry
	other.mu.Unlock()

	sort.SliceStable(entrants, func(i, j int) bool { return entrants[i].seq < entrants[j].seq })

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entrants {
		key := e.capture.uriKey()
		idx.byURI[key] = append(idx.byURI[key], insertedCapture{capture: e.capture, seq: idx.nextSeq})
		idx.nextSeq++
	}
	if otherHasEntry && !idx.hasEntry {
		idx.entrypoint = otherEntry
		idx.hasEntry = true
	}
}
