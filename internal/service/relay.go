// Package service implements the core relay logic: building the outbound
// request from an inbound one and classifying upstream responses.
package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"pageproxy-go/internal/client"
	"pageproxy-go/internal/config"
	"pageproxy-go/internal/model"
)

// forwardedRequestHeaders are the inbound headers replayed upstream when present.
var forwardedRequestHeaders = []string{
	"User-Agent",
	"Referer",
	"Accept-Language",
}

// BodyKind classifies an upstream response body for the rewriting pipeline.
type BodyKind int

const (
	// KindStream is any body relayed byte for byte without buffering.
	KindStream BodyKind = iota
	// KindHTML is a body rewritten as an HTML document tree.
	KindHTML
	// KindCSS is a body rewritten as a stylesheet.
	KindCSS
)

// RelayService builds and executes upstream fetches for inbound requests.
type RelayService struct {
	client *client.Upstream
	cfg    *config.Config
	logger *slog.Logger
}

// NewRelayService creates a RelayService.
func NewRelayService(c *client.Upstream, cfg *config.Config, logger *slog.Logger) *RelayService {
	return &RelayService{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "relay_service"),
	}
}

// Relay fetches the target of a ProxyRequest and returns the raw upstream
// response. Redirects are not followed; the caller intercepts them. The
// caller is responsible for closing the response body.
func (s *RelayService) Relay(pr *model.ProxyRequest) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(pr.Ctx, pr.Method, pr.Target.String(), pr.Body)
	if err != nil {
		return nil, fmt.Errorf("build target request: %w", err)
	}

	// Virtual hosting upstreams dispatch on Host; it must name the target,
	// never this proxy.
	req.Host = pr.Target.Host
	req.Header = s.outboundHeaders(pr)
	for _, ck := range pr.Cookies {
		req.AddCookie(ck)
	}
	if pr.Method == http.MethodPost && pr.ContentLength > 0 {
		req.ContentLength = pr.ContentLength
	}

	s.logger.Debug("relaying request",
		"method", pr.Method,
		"target_host", pr.Target.Host,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pr.Target.Host, err)
	}
	return resp, nil
}

// outboundHeaders builds the upstream request headers: the forwarded
// subset of the inbound headers, with a default User-Agent substituted
// when the client sent none. Accept-Encoding is deliberately not
// forwarded so the transport negotiates (and transparently decodes) gzip,
// leaving rewritable bodies readable.
func (s *RelayService) outboundHeaders(pr *model.ProxyRequest) http.Header {
	h := make(http.Header)
	for _, key := range forwardedRequestHeaders {
		if vals := pr.Header.Values(key); len(vals) > 0 {
			h[http.CanonicalHeaderKey(key)] = vals
		}
	}
	if h.Get("User-Agent") == "" {
		h.Set("User-Agent", s.cfg.Proxy.UserAgent)
	}
	if pr.Method == http.MethodPost && pr.ContentType != "" {
		h.Set("Content-Type", pr.ContentType)
	}
	return h
}

// IsRedirect reports whether the response is a 3xx carrying a Location
// header. A 3xx without one is treated as a normal body response.
func IsRedirect(resp *model.UpstreamResponse) bool {
	return resp.StatusCode >= 300 && resp.StatusCode < 400 && resp.Location() != ""
}

// KindOf dispatches on Content-Type with a case-insensitive substring
// match, mirroring how browsers sniff the essence of the header value.
func KindOf(contentType string) BodyKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "text/html"):
		return KindHTML
	case strings.Contains(ct, "text/css"):
		return KindCSS
	default:
		return KindStream
	}
}
