package warcrec

import "strings"

// StripAngleBrackets removes a single layer of "<...>" around a WARC URI
// field, if present. The angle-bracket form is a WARC serialization
// convention, not URI syntax — §9 — so this is a textual strip, not a URI
// parse.
func StripAngleBrackets(s string) string {
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1]
	}
	return s
}

// AddAngleBrackets wraps s in "<...>" for serialization, unless already
// wrapped.
func AddAngleBrackets(s string) string {
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s
	}
	return "<" + s + ">"
}

// uriScheme returns the scheme portion of a URI string (before the first
// ':'), lowercased, or "" if there is none. Used only to filter capture
// candidates by scheme — not a general URI parser.
func uriScheme(s string) string {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(s[:i])
}

// URIScheme is the exported form of uriScheme, used by warcidx to select
// http(s) captures during index construction.
func URIScheme(s string) string { return uriScheme(s) }

// contentTypeBase returns the portion of a Content-Type value before any
// ";parameter" suffix, e.g. "application/http;msgtype=response" ->
// "application/http".
func contentTypeBase(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
