package rewrite

import (
	"net/url"
	"regexp"
	"strings"

	"pageproxy-go/internal/proxyurl"
)

// cssURLPattern matches url(...) references in CSS text. The inner value
// may be bare or wrapped in single or double quotes.
var cssURLPattern = regexp.MustCompile(`url\(([^)]*)\)`)

// CSS rewrites every url(...) reference in a CSS body to its proxy-local
// form, resolved against base. Text outside the matched references is
// preserved verbatim. References that cannot be proxied (data: URIs,
// already-rewritten values, unparsable fragments) stay unchanged.
func CSS(text string, base *url.URL) string {
	return cssURLPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[len("url(") : len(match)-1]
		ref := strings.Trim(strings.TrimSpace(inner), `'"`)
		local, ok := proxyurl.RewriteRef(ref, base)
		if !ok {
			return match
		}
		return "url('" + local + "')"
	})
}
