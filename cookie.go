package cookiestore

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/always-cache/cookie-store/rfc6265"
)

// Cookie is a validated cookie record: the parsed Set-Cookie data
// combined with the request URL it was received from, normalized per
// RFC 6265. A Cookie only ever comes out of ParseCookie or
// FromRawCookie; invalid combinations fail before a Cookie exists.
//
// Once constructed, the domain, path and flags never change. The only
// permitted mutation is Expire.
type Cookie struct {
	// the parsed Set-Cookie data
	raw http.Cookie
	// the Path attribute, or the default-path computed from the
	// request URL
	path rfc6265.Path
	// the Domain attribute, or a host-only scope if no non-empty
	// Domain attribute was found
	domain rfc6265.Domain
	// the expiry-time per Max-Age or Expires, or end-of-session
	expires rfc6265.Expiration
}

// ParseCookie parses a Set-Cookie header value received from requestURL
// into a validated Cookie. Public suffix rejection is not applied; use
// FromRawCookie to supply a suffix list.
func ParseCookie(setCookie string, requestURL *url.URL) (*Cookie, error) {
	raw, err := http.ParseSetCookie(setCookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return FromRawCookie(raw, requestURL, nil)
}

// FromRawCookie combines already-parsed Set-Cookie attributes with the
// request URL they were received from into a validated Cookie,
// following the storage-model steps of RFC 6265 section 5.3.
//
// A nil suffixes list disables public suffix rejection. With a list
// supplied, a Domain attribute naming a public suffix is refused unless
// it equals the request host exactly: a site may still scope a cookie
// to itself even if its own name is technically a public suffix.
func FromRawCookie(raw *http.Cookie, requestURL *url.URL, suffixes rfc6265.PublicSuffixList) (*Cookie, error) {
	// If the cookie was received from a "non-HTTP" API and the
	// cookie's http-only-flag is set, abort these steps and ignore the
	// cookie entirely.
	if raw.HttpOnly && !rfc6265.IsHTTPScheme(requestURL) {
		return nil, ErrNonHTTPScheme
	}

	requestHost, hostErr := rfc6265.RequestHost(requestURL)

	var domain rfc6265.Domain
	if raw.Domain != "" {
		d, err := rfc6265.DomainFrom(raw.Domain)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if !d.Match(requestHost) {
			return nil, ErrDomainMismatch
		}
		if suffixes != nil && suffixes.IsPublicSuffix(d.String()) && d.String() != requestHost {
			return nil, ErrPublicSuffix
		}
		domain = d
	} else {
		if hostErr != nil {
			return nil, hostErr
		}
		domain = rfc6265.HostOnlyDomain(requestHost)
	}

	path := rfc6265.PathFrom(raw.Path, requestURL)

	// Max-Age takes precedence over Expires, which in turn beats
	// nothing at all (a session cookie).
	var expires rfc6265.Expiration
	switch {
	case raw.MaxAge != 0:
		delta := int64(raw.MaxAge)
		if delta < 0 {
			delta = 0
		}
		expires = rfc6265.FromMaxAge(time.Now(), delta)
	case !raw.Expires.IsZero():
		expires = rfc6265.FromExpires(raw.Expires)
	default:
		expires = rfc6265.SessionEnd()
	}

	return &Cookie{
		raw:     *raw,
		path:    path,
		domain:  domain,
		expires: expires,
	}, nil
}

// Name returns the cookie-name.
func (c *Cookie) Name() string {
	return c.raw.Name
}

// Value returns the cookie-value.
func (c *Cookie) Value() string {
	return c.raw.Value
}

// Secure reports the secure-only-flag.
func (c *Cookie) Secure() bool {
	return c.raw.Secure
}

// HttpOnly reports the http-only-flag.
func (c *Cookie) HttpOnly() bool {
	return c.raw.HttpOnly
}

// Domain returns the domain scope.
func (c *Cookie) Domain() rfc6265.Domain {
	return c.domain
}

// Path returns the path scope.
func (c *Cookie) Path() rfc6265.Path {
	return c.path
}

// Expiration returns the expiry-time.
func (c *Cookie) Expiration() rfc6265.Expiration {
	return c.expires
}

// Matches reports whether this cookie should be included in a request
// for requestURL: the path and domain scopes must cover the URL, a
// Secure cookie requires a secure channel and an HttpOnly cookie an
// HTTP-family scheme.
func (c *Cookie) Matches(requestURL *url.URL) bool {
	requestHost, err := rfc6265.RequestHost(requestURL)
	if err != nil {
		requestHost = ""
	}
	return c.path.Match(requestURL) &&
		c.domain.Match(requestHost) &&
		(!c.raw.Secure || rfc6265.IsSecureScheme(requestURL)) &&
		(!c.raw.HttpOnly || rfc6265.IsHTTPScheme(requestURL))
}

// IsPersistent reports whether the cookie should be persisted across
// sessions.
func (c *Cookie) IsPersistent() bool {
	return c.expires.IsPersistent()
}

// IsExpired reports whether the cookie is expired as of now. The clock
// is read at call time: two calls on the same unmodified cookie can
// legitimately disagree as real time advances.
func (c *Cookie) IsExpired() bool {
	return c.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the cookie is expired as of the given
// instant.
func (c *Cookie) IsExpiredAt(now time.Time) bool {
	return c.expires.ExpiresBy(now)
}

// ExpiresBy reports whether the cookie expires at or before instant t.
// A session cookie never expires by any supplied instant.
func (c *Cookie) ExpiresBy(t time.Time) bool {
	return c.expires.ExpiresBy(t)
}

// Expire expires the cookie immediately, in place. The expiry-time is
// forced to the earliest representable instant; no other field changes.
// This is irreversible.
func (c *Cookie) Expire() {
	c.expires = rfc6265.Expired()
}

// AsSetCookie converts the cookie back into Set-Cookie attributes. The
// conversion is lossy on purpose: Max-Age is relative and would not
// have the same meaning now, so only an absolute Expires is emitted
// (and only for a persistent cookie); Domain is emitted only for a
// suffix scope; Path only if it came from a Path attribute.
func (c *Cookie) AsSetCookie() *http.Cookie {
	out := &http.Cookie{
		Name:  c.raw.Name,
		Value: c.raw.Value,
	}
	if t, ok := c.expires.Time(); ok {
		out.Expires = t
	}
	if c.path.FromAttribute() {
		out.Path = c.path.String()
	}
	if suffix, err := c.domain.Suffix(); err == nil {
		out.Domain = suffix
	}
	return out
}

// String returns the cookie's raw Set-Cookie form, re-emitted from the
// parsed attributes. This is the form retained in the persisted
// representation.
func (c *Cookie) String() string {
	return c.raw.String()
}
