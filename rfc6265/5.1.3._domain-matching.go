package rfc6265

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type domainKind int

const (
	domainHostOnly domainKind = iota
	domainSuffix
)

// Domain is the domain scope carried by a stored cookie. It is a closed
// two-kind value: either the cookie is scoped to exactly the host that
// set it (host-only, no Domain attribute was honored), or to a suffix
// taken from an explicit Domain attribute, covering that domain and its
// subdomains.
//
// The carried string is always canonicalized (see CanonicalHost) and a
// suffix never retains the leading %x2E separator of the attribute form.
type Domain struct {
	kind  domainKind
	value string
}

// HostOnlyDomain scopes a cookie to exactly the given canonical host.
func HostOnlyDomain(host string) Domain {
	return Domain{kind: domainHostOnly, value: host}
}

// SuffixDomain scopes a cookie to the given canonical domain and its
// subdomains.
func SuffixDomain(domain string) Domain {
	return Domain{kind: domainSuffix, value: domain}
}

// DomainFrom builds the suffix scope for an explicit Domain attribute
// value.
//
// §  5.2.3. The Domain Attribute
// §
// §  If the first character of the attribute-value string is %x2E ("."):
// §
// §     Let cookie-domain be the attribute-value without the leading %x2E
// §     (".") character.
// §
// §  Otherwise:
// §
// §     Let cookie-domain be the entire attribute-value.
// §
// §  Convert the cookie-domain to lower case.
func DomainFrom(attr string) (Domain, error) {
	attr = strings.TrimPrefix(attr, ".")
	canonical, err := CanonicalHost(attr)
	if err != nil {
		return Domain{}, fmt.Errorf("canonicalizing domain-attribute: %w", err)
	}
	return SuffixDomain(canonical), nil
}

// IsHostOnly reports whether the scope is exactly one host.
func (d Domain) IsHostOnly() bool {
	return d.kind == domainHostOnly
}

// String returns the canonical domain string carried by the scope,
// regardless of kind. This is the string used for exact-key comparisons
// in a cookie store.
func (d Domain) String() string {
	return d.value
}

// Suffix returns the Domain attribute value, failing with
// ErrUnspecifiedDomain for a host-only scope, which has none.
func (d Domain) Suffix() (string, error) {
	if d.kind != domainSuffix {
		return "", ErrUnspecifiedDomain
	}
	return d.value, nil
}

// Match reports whether the scope covers the given canonicalized
// request-host. A host-only scope covers exactly its own host; a suffix
// scope applies the domain-match algorithm.
func (d Domain) Match(requestHost string) bool {
	if requestHost == "" {
		return false
	}
	switch d.kind {
	case domainHostOnly:
		return d.value == requestHost
	case domainSuffix:
		return DomainMatch(d.value, requestHost)
	}
	return false
}

// DomainMatch implements the domain-match algorithm deciding whether
// cookieDomain covers requestHost. Both inputs must be canonicalized.
//
// §  5.1.3. Domain Matching
// §
// §  A string domain-matches a given domain string if at least one of the
// §  following conditions hold:
// §
// §  o  The domain string and the string are identical. (Note that both
// §     the domain string and the string will have been canonicalized to
// §     lower case at this point.)
// §
// §  o  All of the following conditions hold:
// §
// §     *  The domain string is a suffix of the string.
// §
// §     *  The last character of the string that is not included in the
// §        domain string is a %x2E (".") character.
// §
// §     *  The string is a host name (i.e., not an IP address).
//
// The IP address condition is what keeps a cookie scoped to a numeric
// address from leaking to another address that happens to share trailing
// digits.
func DomainMatch(cookieDomain, requestHost string) bool {
	if cookieDomain == requestHost {
		return true
	}
	if !strings.HasSuffix(requestHost, cookieDomain) {
		return false
	}
	if requestHost[len(requestHost)-len(cookieDomain)-1] != '.' {
		return false
	}
	return net.ParseIP(requestHost) == nil
}

// PublicSuffixList classifies domains that are too broad to be a valid
// cookie scope by themselves, such as top-level registry domains. When a
// list is supplied to cookie construction, Domain attributes naming a
// public suffix are rejected unless they equal the request host exactly.
//
// The interface exists so that test suites can substitute a fixed
// suffix set.
type PublicSuffixList interface {
	IsPublicSuffix(domain string) bool
}

type embeddedSuffixList struct{}

func (embeddedSuffixList) IsPublicSuffix(domain string) bool {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return suffix == domain
}

// EmbeddedSuffixList returns a PublicSuffixList backed by the public
// suffix list compiled into golang.org/x/net/publicsuffix.
func EmbeddedSuffixList() PublicSuffixList {
	return embeddedSuffixList{}
}
