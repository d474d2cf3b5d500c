package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pageproxy-go/internal/config"
	"pageproxy-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, proxy *ProxyHandler, health *HealthHandler) {
	e.GET("/", proxy.Index)
	e.GET("/healthz", health.Healthz)
	e.GET("/statusz", health.Status)

	e.GET("/proxy", proxy.Entry)
	e.GET("/proxy/*", proxy.Relay)
	e.POST("/proxy/*", proxy.Relay)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(
			promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		))
	}
}
