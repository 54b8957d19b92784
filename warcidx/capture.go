// Package warcidx builds an ordered capture index over one or more WARC
// streams: for every response/resource record with an http(s) target URI,
// it records where that capture lives (file, byte offset) and when it was
// made, then supports range queries by URI and entrypoint detection for
// replay front-ends.
package warcidx

import "time"

// Capture is a single indexed occurrence of a URI within a WARC file: the
// target URI, the instant it was captured, and where to find it again.
type Capture struct {
	TargetURI string
	Instant   time.Time
	File      string
	Offset    int64
}

// uriKey is the ordering key for a Capture: the target URI's exact string
// form after angle-bracket stripping, with no further canonicalization.
// Two captures of what a human would consider "the same" URI but spelled
// differently (trailing slash, percent-encoding, query order) sort as
// distinct keys — left as an open question upstream of this core.
func (c Capture) uriKey() string { return c.TargetURI }
