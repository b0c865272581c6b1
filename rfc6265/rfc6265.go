// Package rfc6265 implements the user agent requirements of RFC 6265,
// "HTTP State Management Mechanism", as far as they concern storing
// cookies: host canonicalization, domain matching, path matching and
// expiry-time resolution.
//
// The package quotes the relevant passages of the standard in the
// documentation of each implementing function. Quoted text is prefixed
// with "§".
//
// Parsing the Set-Cookie header itself is not done here; callers hand in
// already-parsed attributes (net/http does the tokenizing).
package rfc6265

import (
	"errors"
	"net/url"
)

var (
	// ErrNonRelativeScheme is returned when no host can be determined
	// from a request URL, i.e. the URL has a non-relative scheme such
	// as "data:".
	ErrNonRelativeScheme = errors.New("request-uri is not a relative scheme; cannot determine host")
	// ErrUnspecifiedDomain is returned when a Domain attribute value is
	// required but the cookie is scoped to its host only.
	ErrUnspecifiedDomain = errors.New("domain-attribute is not specified")
)

// IsHTTPScheme reports whether the URL was retrieved over an HTTP-family
// scheme. Cookies carrying the HttpOnly attribute may only be set from
// and sent to such URLs.
func IsHTTPScheme(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsSecureScheme reports whether the URL counts as a "secure" channel
// for the purposes of the Secure attribute.
func IsSecureScheme(u *url.URL) bool {
	return u.Scheme == "https"
}
