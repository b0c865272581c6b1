package rfc6265

import (
	"net/url"
	"testing"
)

func TestDefaultPath(t *testing.T) {
	defaultPath := func(rawURL, exp string) {
		u, err := url.Parse(rawURL)
		if err != nil {
			t.Fatalf("could not parse %q: %v", rawURL, err)
		}
		if got := DefaultPath(u); got != exp {
			t.Errorf("DefaultPath(%q) = %q, expected %q", rawURL, got, exp)
		}
	}

	defaultPath("http://example.com/foo/bar/", "/foo/bar")
	defaultPath("http://example.com/foo/bar", "/foo")
	defaultPath("http://example.com/foo", "/")
	defaultPath("http://example.com/", "/")
	defaultPath("http://example.com", "/")
}

func TestParsePathAttribute(t *testing.T) {
	if _, ok := ParsePathAttribute(""); ok {
		t.Error("empty Path attribute is usable")
	}
	if _, ok := ParsePathAttribute("baz"); ok {
		t.Error("Path attribute without leading / is usable")
	}
	if value, ok := ParsePathAttribute("/baz/"); !ok || value != "/baz/" {
		t.Errorf("ParsePathAttribute(/baz/) = %q, %v", value, ok)
	}
}

func TestPathFrom(t *testing.T) {
	u, _ := url.Parse("http://example.com/foo/bar")

	p := PathFrom("/baz", u)
	if p.String() != "/baz" || !p.FromAttribute() {
		t.Errorf("PathFrom(/baz) = %q (from attribute: %v)", p.String(), p.FromAttribute())
	}

	p = PathFrom("", u)
	if p.String() != "/foo" || p.FromAttribute() {
		t.Errorf("PathFrom(empty) = %q (from attribute: %v)", p.String(), p.FromAttribute())
	}

	p = PathFrom("baz", u)
	if p.String() != "/foo" || p.FromAttribute() {
		t.Errorf("PathFrom(baz) = %q (from attribute: %v)", p.String(), p.FromAttribute())
	}
}

func TestPathMatch(t *testing.T) {
	match := func(cookiePath, requestPath string, exp bool) {
		if got := PathMatch(cookiePath, requestPath); got != exp {
			t.Errorf("PathMatch(%q, %q) = %v, expected %v", cookiePath, requestPath, got, exp)
		}
	}

	// identical
	match("/foo/bar", "/foo/bar", true)
	// prefix ending in /
	match("/foo/", "/foo/bar", true)
	// prefix followed by a / in the request path
	match("/foo", "/foo/bar", true)
	// prefix not bounded by a separator
	match("/fo", "/foo/bar", false)
	// not a prefix at all
	match("/bus/baz", "/foo/bar", false)
	// root matches everything
	match("/", "/foo/bar", true)
	match("/", "/", true)
}
