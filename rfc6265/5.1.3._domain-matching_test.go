package rfc6265

import (
	"errors"
	"testing"
)

func TestDomainMatch(t *testing.T) {
	match := func(cookieDomain, requestHost string, exp bool) {
		if got := DomainMatch(cookieDomain, requestHost); got != exp {
			t.Errorf("DomainMatch(%q, %q) = %v, expected %v", cookieDomain, requestHost, got, exp)
		}
	}

	match("example.com", "example.com", true)
	match("example.com", "foo.example.com", true)
	match("foo.example.com", "baz.foo.example.com", true)
	// not bounded by a separator
	match("example.com", "myexample.com", false)
	match("oo.example.com", "foo.example.com", false)
	// sibling and sub-scopes of the request host
	match("bar.example.com", "foo.example.com", false)
	match("baz.foo.example.com", "foo.example.com", false)
	// IP literals only ever match exactly
	match("10.0.0.1", "10.0.0.1", true)
	match("0.0.1", "10.0.0.1", false)
	match("168.0.1", "192.168.0.1", false)
}

func TestDomainFrom(t *testing.T) {
	suffix := func(attr, exp string) {
		d, err := DomainFrom(attr)
		if err != nil {
			t.Fatalf("DomainFrom(%q) failed: %v", attr, err)
		}
		got, err := d.Suffix()
		if err != nil {
			t.Fatalf("Suffix() of DomainFrom(%q) failed: %v", attr, err)
		}
		if got != exp {
			t.Errorf("DomainFrom(%q) = %q, expected %q", attr, got, exp)
		}
	}

	suffix("example.com", "example.com")
	suffix(".example.com", "example.com")
	suffix("EXAMPLE.com", "example.com")
	suffix("bücher.de", "xn--bcher-kva.de")
}

func TestDomainScopes(t *testing.T) {
	hostOnly := HostOnlyDomain("example.com")
	if !hostOnly.IsHostOnly() {
		t.Fatal("HostOnlyDomain is not host-only")
	}
	if !hostOnly.Match("example.com") {
		t.Error("host-only scope does not match its own host")
	}
	if hostOnly.Match("foo.example.com") {
		t.Error("host-only scope matches a subdomain")
	}
	if _, err := hostOnly.Suffix(); !errors.Is(err, ErrUnspecifiedDomain) {
		t.Errorf("Suffix() of host-only scope = %v, expected ErrUnspecifiedDomain", err)
	}

	suffix := SuffixDomain("example.com")
	if suffix.IsHostOnly() {
		t.Fatal("SuffixDomain is host-only")
	}
	if !suffix.Match("example.com") || !suffix.Match("foo.example.com") {
		t.Error("suffix scope does not cover its domain and subdomains")
	}
	if suffix.Match("myexample.com") {
		t.Error("suffix scope matches an unrelated host")
	}
	if suffix.Match("") {
		t.Error("suffix scope matches an empty host")
	}
}

func TestEmbeddedSuffixList(t *testing.T) {
	list := EmbeddedSuffixList()
	if !list.IsPublicSuffix("com") {
		t.Error("com is not classified a public suffix")
	}
	if !list.IsPublicSuffix("co.uk") {
		t.Error("co.uk is not classified a public suffix")
	}
	if list.IsPublicSuffix("example.com") {
		t.Error("example.com is classified a public suffix")
	}
}
