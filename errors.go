package cookiestore

import (
	"errors"

	"github.com/always-cache/cookie-store/rfc6265"
)

// The closed set of reasons a cookie can be refused. Every construction
// failure aborts creation of that single cookie and never partially
// mutates a store.
var (
	// ErrNonHTTPScheme: the cookie carries HttpOnly but was received
	// from a request URL that is not an HTTP-family scheme.
	ErrNonHTTPScheme = errors.New("request-uri is not an http scheme but HttpOnly attribute set")
	// ErrNonRelativeScheme: the cookie carries no Domain attribute and
	// no host can be determined from the request URL.
	ErrNonRelativeScheme = rfc6265.ErrNonRelativeScheme
	// ErrDomainMismatch: the explicit Domain attribute does not
	// domain-match the request host.
	ErrDomainMismatch = errors.New("request-uri does not domain-match the cookie")
	// ErrParse: the raw Set-Cookie text is malformed.
	ErrParse = errors.New("unable to parse string as a cookie")
	// ErrPublicSuffix: the explicit Domain attribute names a public
	// suffix that is not the request host itself.
	ErrPublicSuffix = errors.New("domain-attribute value is a public suffix")
	// ErrUnspecifiedDomain: a Domain attribute value was required from a
	// host-only cookie.
	ErrUnspecifiedDomain = rfc6265.ErrUnspecifiedDomain
	// ErrExpired is reserved for call sites that require a non-expired
	// cookie in context.
	ErrExpired = errors.New("attempted to utilize an expired cookie")
)
