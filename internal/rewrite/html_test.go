package rewrite

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const testBanner = `<div id="notice">proxied</div>`

// parseDoc is a test helper returning a goquery document over rewritten output.
func parseDoc(t *testing.T, out []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse rewritten output: %v", err)
	}
	return doc
}

func TestHTML_RewritesAttributes(t *testing.T) {
	base := mustParse(t, "http://x.test/dir/page.html")
	in := `<html><head>
<link rel="stylesheet" href="/main.css">
<script src="app.js"></script>
</head><body>
<a href="other.html">link</a>
<img src="../img/a.png">
<form action="/submit" method="post"></form>
<iframe src="//frames.test/f"></iframe>
</body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	tests := []struct {
		selector string
		attr     string
		want     string
	}{
		{"a", "href", "/proxy/http://x.test/dir/other.html"},
		{"link", "href", "/proxy/http://x.test/main.css"},
		{"script", "src", "/proxy/http://x.test/dir/app.js"},
		{"img", "src", "/proxy/http://x.test/img/a.png"},
		{"form", "action", "/proxy/http://x.test/submit"},
		{"iframe", "src", "/proxy/http://frames.test/f"},
	}
	for _, tt := range tests {
		got, _ := doc.Find(tt.selector).First().Attr(tt.attr)
		if got != tt.want {
			t.Errorf("%s[%s] = %q, want %q", tt.selector, tt.attr, got, tt.want)
		}
	}
}

func TestHTML_Srcset(t *testing.T) {
	base := mustParse(t, "http://x.test/p/")
	in := `<html><body><img src="a.png" srcset="a.png 1x, b.png 2x"></body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	got, _ := doc.Find("img").Attr("srcset")
	want := "/proxy/http://x.test/p/a.png 1x, /proxy/http://x.test/p/b.png 2x"
	if got != want {
		t.Errorf("img[srcset] = %q, want %q", got, want)
	}
}

func TestHTML_MetaRefresh(t *testing.T) {
	base := mustParse(t, "http://x.test/old/")
	in := `<html><head>
<meta http-equiv="refresh" content="5;url=/fresh">
<meta name="description" content="just words">
</head><body></body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	got, _ := doc.Find(`meta[http-equiv="refresh"]`).Attr("content")
	want := "5;url=/proxy/http://x.test/fresh"
	if got != want {
		t.Errorf("meta refresh content = %q, want %q", got, want)
	}

	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if desc != "just words" {
		t.Errorf("meta description content = %q, want unchanged", desc)
	}
}

func TestHTML_StyleBlockAndAttribute(t *testing.T) {
	base := mustParse(t, "http://x.test/css/")
	in := `<html><head><style>.hero > span { background: url('/img/a.png'); }</style></head>
<body><div style="background: url(b.png); color: red;">x</div></body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	style := doc.Find("style").Text()
	if !strings.Contains(style, "url('/proxy/http://x.test/img/a.png')") {
		t.Errorf("style block = %q, want rewritten url", style)
	}
	if !strings.Contains(string(out), ".hero > span") {
		t.Errorf("output = %q, want child combinator left unescaped", out)
	}

	attr, _ := doc.Find("div").Attr("style")
	want := "background: url('/proxy/http://x.test/css/b.png'); color: red;"
	if attr != want {
		t.Errorf("style attribute = %q, want %q", attr, want)
	}
}

func TestHTML_BannerFirstChild(t *testing.T) {
	base := mustParse(t, "http://x.test/")
	in := `<html><body><h1>Title</h1><p>text</p></body></html>`

	out, err := HTML([]byte(in), base, testBanner)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	children := doc.Find("body").Children()
	if children.Length() != 3 {
		t.Fatalf("body children = %d, want 3", children.Length())
	}
	if id, _ := children.First().Attr("id"); id != "notice" {
		t.Errorf("first body child id = %q, want %q", id, "notice")
	}
	if got := children.Eq(1).Text(); got != "Title" {
		t.Errorf("second child text = %q, want %q (original order preserved)", got, "Title")
	}
	if got := children.Eq(2).Text(); got != "text" {
		t.Errorf("third child text = %q, want %q (original order preserved)", got, "text")
	}
}

func TestHTML_NoBannerWhenEmpty(t *testing.T) {
	base := mustParse(t, "http://x.test/")
	in := `<html><body><p>text</p></body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if strings.Contains(string(out), "notice") {
		t.Errorf("output contains banner markup with banner disabled: %s", out)
	}
}

func TestHTML_UnproxyableSchemesUntouched(t *testing.T) {
	base := mustParse(t, "http://x.test/")
	in := `<html><body>
<a href="javascript:void(0)">js</a>
<img src="data:image/gif;base64,R0lGOD">
</body></html>`

	out, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := parseDoc(t, out)

	if href, _ := doc.Find("a").Attr("href"); href != "javascript:void(0)" {
		t.Errorf("a[href] = %q, want untouched javascript: URI", href)
	}
	if src, _ := doc.Find("img").Attr("src"); src != "data:image/gif;base64,R0lGOD" {
		t.Errorf("img[src] = %q, want untouched data: URI", src)
	}
}

func TestHTML_RewriteIsIdempotent(t *testing.T) {
	base := mustParse(t, "http://x.test/p/")
	in := `<html><body><a href="a.html">a</a><img src="i.png" srcset="i.png 1x"></body></html>`

	once, err := HTML([]byte(in), base, "")
	if err != nil {
		t.Fatalf("HTML() first pass error = %v", err)
	}
	twice, err := HTML(once, base, "")
	if err != nil {
		t.Fatalf("HTML() second pass error = %v", err)
	}

	d1 := parseDoc(t, once)
	d2 := parseDoc(t, twice)

	h1, _ := d1.Find("a").Attr("href")
	h2, _ := d2.Find("a").Attr("href")
	if h1 != h2 {
		t.Errorf("a[href] changed on second rewrite: %q -> %q", h1, h2)
	}

	s1, _ := d1.Find("img").Attr("srcset")
	s2, _ := d2.Find("img").Attr("srcset")
	if s1 != s2 {
		t.Errorf("img[srcset] changed on second rewrite: %q -> %q", s1, s2)
	}
}
