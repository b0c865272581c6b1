package rfc6265

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalHost returns the canonicalized form of the given host name.
//
// §  5.1.2. Canonicalized Host Names
// §
// §  A canonicalized host name is the string generated by the following
// §  algorithm:
// §
// §  1.  Convert the host name to a sequence of individual domain name
// §      labels.
// §
// §  2.  Convert each label that is not a Non-Reserved LDH (NR-LDH) label,
// §      to an A-label (see Section 2.3.2.1 of [RFC5890] for the former
// §      and latter), or to a "punycode label" (a label resulting from the
// §      "ToASCII" conversion in Section 4 of [RFC3490]), as appropriate
// §      (see Section 6.3 of this specification).
// §
// §  3.  Concatenate the resulting labels, separated by a %x2E (".")
// §      character.
//
// IP literals are passed through unchanged apart from lower-casing, since
// punycoding does not apply to them.
func CanonicalHost(host string) (string, error) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return host, nil
	}
	encoded, err := idna.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna conversion of %q: %w", host, err)
	}
	return encoded, nil
}

// RequestHost returns the canonicalized request-host for the given
// request URL. It fails with ErrNonRelativeScheme when the URL carries
// no host, as is the case for non-relative schemes such as "data:".
func RequestHost(requestURL *url.URL) (string, error) {
	host := requestURL.Hostname()
	if host == "" {
		return "", ErrNonRelativeScheme
	}
	return CanonicalHost(host)
}
