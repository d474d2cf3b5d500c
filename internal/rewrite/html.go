package rewrite

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pageproxy-go/internal/proxyurl"
)

// attrRewrites lists the (selector, attribute) pairs whose values are
// resolved against the page base URL and rewritten to proxy-local form.
// Elements missing the attribute are not selected at all.
var attrRewrites = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"script[src]", "src"},
	{"img[src]", "src"},
	{"form[action]", "action"},
	{"iframe[src]", "src"},
}

// HTML parses an upstream HTML document, rewrites every supported
// reference to its proxy-local form resolved against base, rewrites CSS
// inside <style> elements and style attributes, and prepends banner as
// the first child of <body> (skipped when the document has no body or
// banner is empty). The mutated tree is serialized and returned.
func HTML(body []byte, base *url.URL, banner string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	for _, rw := range attrRewrites {
		attr := rw.attr
		doc.Find(rw.selector).Each(func(_ int, s *goquery.Selection) {
			val, _ := s.Attr(attr)
			if local, ok := proxyurl.RewriteRef(val, base); ok {
				s.SetAttr(attr, local)
			}
		})
	}

	doc.Find("img[srcset]").Each(func(_ int, s *goquery.Selection) {
		val, _ := s.Attr("srcset")
		s.SetAttr("srcset", proxyurl.RewriteSrcset(val, base))
	})

	// Meta refresh: only content values carrying a url= part are rewritten.
	doc.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		val, _ := s.Attr("content")
		if strings.Contains(strings.ToLower(val), "url=") {
			s.SetAttr("content", proxyurl.RewriteMetaRefresh(val, base))
		}
	})

	// Style elements hold raw text; their nodes are edited directly so CSS
	// combinators like "a > b" are not entity-escaped on the way through.
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					child.Data = CSS(child.Data, base)
				}
			}
		}
	})

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		val, _ := s.Attr("style")
		s.SetAttr("style", CSS(val, base))
	})

	if banner != "" {
		if sel := doc.Find("body").First(); sel.Length() > 0 {
			sel.PrependHtml(banner)
		}
	}

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return []byte(out), nil
}
