// Package model defines shared types for the proxy pipeline.
package model

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// ProxyRequest represents an inbound client request to be replayed against
// an upstream target. It is built once per inbound request and is not
// mutated after construction.
type ProxyRequest struct {
	Ctx     context.Context
	Method  string
	Target  *url.URL // absolute upstream URL, inbound query already merged
	Header  http.Header
	Cookies []*http.Cookie
	Body    io.Reader

	// ContentType and ContentLength describe Body for POST forwarding.
	ContentType   string
	ContentLength int64
}

// UpstreamResponse represents the upstream response to be relayed back.
// Body ownership transfers to the consumer, which must close it.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie // parsed Set-Cookie entries
	Body       io.ReadCloser
}

// ContentType returns the upstream Content-Type header.
func (r *UpstreamResponse) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Location returns the upstream Location header, empty when absent.
func (r *UpstreamResponse) Location() string {
	return r.Header.Get("Location")
}
