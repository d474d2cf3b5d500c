package rewrite

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestCSS_RewritesURL(t *testing.T) {
	base := mustParse(t, "http://x.test/css/")

	got := CSS("background: url('/img/a.png');", base)
	want := "background: url('/proxy/http://x.test/img/a.png');"
	if got != want {
		t.Errorf("CSS() = %q, want %q", got, want)
	}
}

func TestCSS_QuoteVariants(t *testing.T) {
	base := mustParse(t, "http://x.test/css/")

	tests := []struct {
		in   string
		want string
	}{
		{`url(a.png)`, `url('/proxy/http://x.test/css/a.png')`},
		{`url("a.png")`, `url('/proxy/http://x.test/css/a.png')`},
		{`url( 'a.png' )`, `url('/proxy/http://x.test/css/a.png')`},
	}
	for _, tt := range tests {
		if got := CSS(tt.in, base); got != tt.want {
			t.Errorf("CSS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCSS_MultipleDeclarationsPreserved(t *testing.T) {
	base := mustParse(t, "http://x.test/")

	in := ".a { color: red; background: url(one.png); } .b { background: url(two.png); margin: 0; }"
	want := ".a { color: red; background: url('/proxy/http://x.test/one.png'); } .b { background: url('/proxy/http://x.test/two.png'); margin: 0; }"
	if got := CSS(in, base); got != want {
		t.Errorf("CSS() = %q, want %q", got, want)
	}
}

func TestCSS_DataURIUnchanged(t *testing.T) {
	base := mustParse(t, "http://x.test/")

	in := `background: url(data:image/png;base64,AAAA);`
	if got := CSS(in, base); got != in {
		t.Errorf("CSS() = %q, want unchanged %q", got, in)
	}
}

func TestCSS_AlreadyProxiedUnchanged(t *testing.T) {
	base := mustParse(t, "http://x.test/")

	in := `background: url(/proxy/http://x.test/a.png);`
	if got := CSS(in, base); got != in {
		t.Errorf("CSS() = %q, want unchanged %q", got, in)
	}
}
