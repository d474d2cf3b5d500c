// Package middleware provides Echo middleware for logging, security and metrics.
package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"pageproxy-go/internal/proxyurl"
)

// RequestLogger returns an Echo middleware that logs each request with slog.
// Relay paths embed the full target URL; only the target host is logged so
// log lines stay bounded and free of query payloads.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			logger.Info("request",
				"method", req.Method,
				"path", loggablePath(req.URL.Path),
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_out", res.Size,
			)

			return err
		}
	}
}

// loggablePath collapses relay paths to the target host.
func loggablePath(path string) string {
	if !strings.HasPrefix(path, proxyurl.PathPrefix) {
		return path
	}
	target, err := proxyurl.FromProxyPath(path)
	if err != nil {
		return proxyurl.PathPrefix
	}
	return proxyurl.PathPrefix + target.Scheme + "://" + target.Host
}
