// Package proxyurl resolves references found in upstream content and
// translates absolute URLs to and from their proxy-local form.
//
// A proxy-local URL embeds the absolute upstream URL verbatim after the
// /proxy/ prefix, so translation is lossless in both directions:
//
//	https://example.com/a?b=1  <->  /proxy/https://example.com/a?b=1
package proxyurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// PathPrefix is the route prefix of the relay endpoint.
const PathPrefix = "/proxy/"

// ErrUnproxyable marks references that must be passed through verbatim:
// non-fetchable schemes and references already in proxy-local form.
var ErrUnproxyable = errors.New("reference is not proxyable")

// skipSchemes lists reference schemes that are never rewritten.
var skipSchemes = []string{"javascript:", "data:", "mailto:", "tel:", "vbscript:", "about:"}

// Resolve turns a reference from upstream content into an absolute URL
// using standard RFC 3986 resolution against base. Relative paths,
// protocol-relative references and query/fragment-only references are all
// handled. Returns ErrUnproxyable for references that should stay verbatim.
func Resolve(ref string, base *url.URL) (*url.URL, error) {
	lower := strings.ToLower(strings.TrimSpace(ref))
	for _, scheme := range skipSchemes {
		if strings.HasPrefix(lower, scheme) {
			return nil, ErrUnproxyable
		}
	}
	// Already proxy-local: rewriting again would double-encode.
	if strings.HasPrefix(ref, PathPrefix) || strings.HasPrefix(ref, strings.TrimSuffix(PathPrefix, "/")+"?") {
		return nil, ErrUnproxyable
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse reference %q: %w", ref, err)
	}
	return base.ResolveReference(u), nil
}

// ToProxyPath encodes an absolute URL as a proxy-local path. The URL is
// embedded verbatim, scheme included, so FromProxyPath can invert it exactly.
func ToProxyPath(u *url.URL) string {
	return PathPrefix + u.String()
}

// FromProxyPath reconstructs the absolute upstream URL from a proxy-local
// path. It accepts the path with or without the /proxy/ prefix and repairs
// a scheme separator collapsed to a single slash by path-normalizing
// clients or intermediaries.
func FromProxyPath(local string) (*url.URL, error) {
	raw := strings.TrimPrefix(local, PathPrefix)
	raw = repairScheme(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse target %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("target %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("target %q: missing host", raw)
	}
	return u, nil
}

// repairScheme restores "scheme://" when "//" was collapsed to "/".
func repairScheme(raw string) string {
	for _, scheme := range []string{"http", "https"} {
		if strings.HasPrefix(raw, scheme+":/") && !strings.HasPrefix(raw, scheme+"://") {
			return scheme + "://" + raw[len(scheme)+2:]
		}
	}
	return raw
}

// RewriteRef resolves ref against base and returns its proxy-local form.
// The second return is false when the reference must stay verbatim.
func RewriteRef(ref string, base *url.URL) (string, bool) {
	u, err := Resolve(ref, base)
	if err != nil {
		return ref, false
	}
	return ToProxyPath(u), true
}

// RewriteSrcset rewrites each URL in a srcset attribute value, a
// comma-separated list of "<url> <descriptor>" candidates. Descriptors
// are preserved verbatim; candidates are re-joined with ", ".
func RewriteSrcset(val string, base *url.URL) string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		urlPart, descriptor, hasDesc := strings.Cut(part, " ")
		rewritten, _ := RewriteRef(urlPart, base)
		if hasDesc {
			out = append(out, rewritten+" "+strings.TrimSpace(descriptor))
		} else {
			out = append(out, rewritten)
		}
	}
	return strings.Join(out, ", ")
}

// RewriteMetaRefresh rewrites the URL in a meta-refresh content value of
// the form "<seconds>;url=<target>". Everything before "url=" (the timing
// value and separator) is preserved verbatim. Values without "url=" are
// returned unchanged.
func RewriteMetaRefresh(content string, base *url.URL) string {
	idx := strings.Index(strings.ToLower(content), "url=")
	if idx == -1 {
		return content
	}
	prefix := content[:idx+len("url=")]
	target := content[idx+len("url="):]
	rewritten, _ := RewriteRef(target, base)
	return prefix + rewritten
}
