package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// indexPage is the URL entry form served at the root. Submitting it issues
// GET /proxy?url=<value>, which the Entry handler turns into the
// proxy-local path form.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>pageproxy</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 80px auto; padding: 0 16px; }
input[type=text] { width: 70%; padding: 8px; font-size: 16px; }
button { padding: 8px 16px; font-size: 16px; }
p.hint { color: #666; font-size: 14px; }
</style>
</head>
<body>
<h1>pageproxy</h1>
<form action="/proxy" method="get">
<input type="text" name="url" placeholder="example.com or https://example.com/page" autofocus>
<button type="submit">Go</button>
</form>
<p class="hint">The page is fetched by this server and relayed back with a visible notice banner. Do not submit sensitive data through it.</p>
</body>
</html>
`

// Index serves the URL entry page.
func (h *ProxyHandler) Index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}
