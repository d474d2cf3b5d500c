package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"pageproxy-go/internal/config"
	"pageproxy-go/internal/metrics"
	"pageproxy-go/internal/model"
	"pageproxy-go/internal/proxyurl"
	"pageproxy-go/internal/rewrite"
	"pageproxy-go/internal/service"
)

// ProxyHandler serves the URL entry endpoint and the main relay endpoint.
type ProxyHandler struct {
	service *service.RelayService
	cfg     *config.Config
	metrics *metrics.Metrics // optional, may be nil
	logger  *slog.Logger
	banner  string
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.RelayService, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *ProxyHandler {
	banner := ""
	if cfg.Proxy.BannerOn() {
		banner = rewrite.Banner
	}
	return &ProxyHandler{
		service: svc,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "proxy_handler"),
		banner:  banner,
	}
}

// Entry handles GET /proxy?url=<raw>: it normalizes the target and
// redirects the client to the proxy-local path form.
func (h *ProxyHandler) Entry(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("url"))
	if raw == "" {
		return c.String(http.StatusBadRequest, "Error: no URL provided in the 'url' parameter.")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = h.cfg.Proxy.DefaultScheme + "://" + raw
	}
	return c.Redirect(http.StatusFound, proxyurl.PathPrefix+raw)
}

// Relay handles GET|POST /proxy/<absolute-target-url>: it fetches the
// embedded target and relays the response, rewriting redirects and
// HTML/CSS bodies so that follow-up requests flow back through the proxy.
func (h *ProxyHandler) Relay(c echo.Context) error {
	req := c.Request()

	target, err := targetFromRequest(req)
	if err != nil {
		return c.String(http.StatusBadRequest, "Error: invalid target URL. "+err.Error())
	}

	pr := &model.ProxyRequest{
		Ctx:     req.Context(),
		Method:  req.Method,
		Target:  target,
		Header:  req.Header,
		Cookies: req.Cookies(),
	}
	if req.Method == http.MethodPost {
		pr.Body = req.Body
		pr.ContentType = req.Header.Get("Content-Type")
		pr.ContentLength = req.ContentLength
	}

	resp, err := h.service.Relay(pr)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Intercept redirects: the client is sent to the proxy-local form of
	// the Location target instead of upstream. A 3xx whose Location cannot
	// be resolved falls through to normal body handling.
	if service.IsRedirect(resp) {
		if local, ok := h.localRedirect(resp, target); ok {
			if h.metrics != nil {
				h.metrics.RedirectsIntercepted.Inc()
			}
			return c.Redirect(resp.StatusCode, local)
		}
		h.logger.Warn("unusable redirect location, relaying body",
			"location", resp.Location(),
			"target_host", target.Host,
		)
	}

	// Upstream cookies are rescoped to the proxy's own domain.
	h.replayCookies(c, resp.Cookies)

	switch service.KindOf(resp.ContentType()) {
	case service.KindHTML:
		return h.serveRewritten(c, resp, target, service.KindHTML)
	case service.KindCSS:
		return h.serveRewritten(c, resp, target, service.KindCSS)
	default:
		return h.stream(c, resp, resp.Body)
	}
}

// targetFromRequest reconstructs the absolute target URL embedded in the
// request path, appending the inbound query string. The escaped path is
// used so percent-encoded bytes in the embedded URL survive untouched.
func targetFromRequest(req *http.Request) (*url.URL, error) {
	raw := strings.TrimPrefix(req.URL.EscapedPath(), proxyurl.PathPrefix)
	if q := req.URL.RawQuery; q != "" {
		raw += "?" + q
	}
	return proxyurl.FromProxyPath(raw)
}

// localRedirect resolves the upstream Location against the URL actually
// fetched and returns its proxy-local form.
func (h *ProxyHandler) localRedirect(resp *model.UpstreamResponse, target *url.URL) (string, bool) {
	loc, err := url.Parse(resp.Location())
	if err != nil {
		return "", false
	}
	return proxyurl.ToProxyPath(target.ResolveReference(loc)), true
}

// replayCookies sets upstream cookies on the client response, scoped to
// the proxy host: name and value are kept, the upstream domain is not.
func (h *ProxyHandler) replayCookies(c echo.Context, cookies []*http.Cookie) {
	for _, ck := range cookies {
		c.SetCookie(&http.Cookie{
			Name:  ck.Name,
			Value: ck.Value,
			Path:  "/",
		})
	}
}

// serveRewritten buffers a rewritable body, applies the content rewriter
// and serves the result with the upstream status. Bodies larger than the
// configured rewrite cap are streamed through unmodified instead of being
// buffered without bound.
func (h *ProxyHandler) serveRewritten(c echo.Context, resp *model.UpstreamResponse, target *url.URL, kind service.BodyKind) error {
	maxBytes := h.cfg.Upstream.RewriteMaxBytes
	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return h.mapError(c, err)
	}
	if int64(len(buf)) > maxBytes {
		h.logger.Warn("rewritable body exceeds cap, streaming unmodified",
			"target_host", target.Host,
			"cap_bytes", maxBytes,
		)
		return h.stream(c, resp, io.MultiReader(bytes.NewReader(buf), resp.Body))
	}

	var out []byte
	switch kind {
	case service.KindHTML:
		out, err = rewrite.HTML(buf, target, h.banner)
		if err != nil {
			// Best effort: an unparsable document is relayed as-is.
			h.logger.Warn("html rewrite failed, relaying original body",
				"err", err,
				"target_host", target.Host,
			)
			out = buf
		} else if h.metrics != nil {
			h.metrics.PagesRewritten.Inc()
		}
	case service.KindCSS:
		out = []byte(rewrite.CSS(string(buf), target))
		if h.metrics != nil {
			h.metrics.StylesheetsRewritten.Inc()
		}
	default:
		out = buf
	}

	return c.Blob(resp.StatusCode, resp.ContentType(), out)
}

// stream relays a body byte for byte without buffering, preserving status
// code and Content-Type. Backpressure from the client propagates to the
// upstream read through io.Copy.
func (h *ProxyHandler) stream(c echo.Context, resp *model.UpstreamResponse, body io.Reader) error {
	header := c.Response().Header()
	if ct := resp.ContentType(); ct != "" {
		header.Set("Content-Type", ct)
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if _, err := strconv.ParseInt(cl, 10, 64); err == nil {
			header.Set("Content-Length", cl)
		}
	}
	if h.metrics != nil {
		h.metrics.StreamedResponses.Inc()
	}

	c.Response().WriteHeader(resp.StatusCode)

	// If io.Copy fails mid-stream (client disconnect, upstream reset), the
	// status has already been sent; the client sees a truncated body. This
	// is inherent to streaming proxies, so the error is only logged.
	if _, err := io.Copy(c.Response(), body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", c.Request().URL.Path,
		)
	}

	return nil
}

// mapError turns a fetch failure into the client-facing error response.
// Network-level failures (DNS, refused connections, timeouts) surface as
// a 500 naming the underlying cause; the request is never left hanging.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("relay error",
		"err", err,
		"path", c.Request().URL.Path,
	)
	return c.String(http.StatusInternalServerError, "Error: could not fetch the URL. "+err.Error())
}
