package warcrec

import (
	"errors"
	"strings"
)

// RequestTarget is a parsed HTTP request-target (RFC 7230 §5.3) from an
// embedded HTTP request's start line — origin-form, absolute-form, or the
// asterisk-form used by OPTIONS *.
type RequestTarget struct {
	Scheme   string
	Host     string
	Path     string
	RawQuery string
}

// ParseRequestTarget parses raw, the second token of an HTTP/1.x request
// line, into its components.
func ParseRequestTarget(raw string) (RequestTarget, error) {
	if raw == "" {
		return RequestTarget{}, errors.New("warcrec: empty request-target")
	}
	if strings.ContainsAny(raw, " \r\n") {
		return RequestTarget{}, errors.New("warcrec: invalid characters in request-target")
	}

	if raw == "*" {
		return RequestTarget{Path: "*"}, nil
	}

	var u RequestTarget
	switch {
	case strings.HasPrefix(raw, "http://"):
		u.Scheme = "http"
		rest := strings.TrimPrefix(raw, "http://")
		slash := strings.IndexByte(rest, '/')
		if slash == -1 {
			u.Host = strings.ToLower(rest)
			u.Path = "/"
			return u, nil
		}
		u.Host = strings.ToLower(rest[:slash])
		raw = rest[slash:]

	case strings.HasPrefix(raw, "https://"):
		u.Scheme = "https"
		rest := strings.TrimPrefix(raw, "https://")
		slash := strings.IndexByte(rest, '/')
		if slash == -1 {
			u.Host = strings.ToLower(rest)
			u.Path = "/"
			return u, nil
		}
		u.Host = strings.ToLower(rest[:slash])
		raw = rest[slash:]

	default:
		// origin-form (/path?query)
	}

	if qmark := strings.IndexByte(raw, '?'); qmark >= 0 {
		u.Path = raw[:qmark]
		u.RawQuery = raw[qmark+1:]
	} else {
		u.Path = raw
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// isRequestStartLine reports whether line looks like an HTTP/1.x request
// line ("METHOD SP request-target SP HTTP/x.y") rather than a status line
// ("HTTP/x.y SP status-code SP reason").
func isRequestStartLine(line string) bool {
	return !strings.HasPrefix(line, "HTTP/")
}

// ReconcileWithCaptureURI checks a parsed request-target against the
// record's own WARC-Target-URI — the URI a crawler recorded as the thing
// it fetched. hostHeader is the embedded message's Host header, used to
// fill in the host half of an origin-form target (which carries no host
// of its own). A replay tool keys entirely off WARC-Target-URI; if the
// request actually embedded inside the record disagrees about what it
// was requesting, replaying that record under its own target URI would
// silently serve the wrong capture.
func (t RequestTarget) ReconcileWithCaptureURI(captureURI, hostHeader string) error {
	if t.Path == "*" {
		return nil
	}
	capture, err := ParseRequestTarget(captureURI)
	if err != nil || capture.Path == "*" {
		return nil
	}

	host := t.Host
	if host == "" {
		host = hostHeader
	}
	if host != "" && capture.Host != "" && !strings.EqualFold(host, capture.Host) {
		return invariantErrorf(WarcTargetURI, "embedded request-target host %q disagrees with capture URI host %q", host, capture.Host)
	}
	if t.Path != capture.Path {
		return invariantErrorf(WarcTargetURI, "embedded request-target path %q disagrees with capture URI path %q", t.Path, capture.Path)
	}
	return nil
}
