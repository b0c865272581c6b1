package rfc6265

import (
	"math"
	"time"
)

// The bounds of representable expiry-times. Non-positive Max-Age values
// collapse to EarliestExpiry; oversized ones clamp to LatestExpiry
// instead of overflowing.
var (
	EarliestExpiry = time.Unix(0, 0).UTC()
	LatestExpiry   = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Expiration is the expiry-time of a cookie: either an absolute UTC
// instant (the cookie is persistent) or end-of-session (it is not).
//
// §  5.3. Storage Model
// §
// §  3.  If the cookie-attribute-list contains an attribute with an
// §      attribute-name of "Max-Age":
// §
// §      *  Set the cookie's persistent-flag to true.
// §
// §      *  Set the cookie's expiry-time to attribute-value of the last
// §         attribute in the cookie-attribute-list with an attribute-name
// §         of "Max-Age".
// §
// §      Otherwise, if the cookie-attribute-list contains an attribute
// §      with an attribute-name of "Expires":
// §
// §      *  Set the cookie's persistent-flag to true.
// §
// §      *  Set the cookie's expiry-time to attribute-value of the last
// §         attribute in the cookie-attribute-list with an attribute-name
// §         of "Expires".
// §
// §      Otherwise:
// §
// §      *  Set the cookie's persistent-flag to false.
//
// The precedence is fixed once when the cookie is created: Max-Age wins
// over Expires unconditionally, and the two values are never compared.
type Expiration struct {
	atUTC      time.Time
	persistent bool
}

// SessionEnd is the expiry-time of a non-persistent cookie.
func SessionEnd() Expiration {
	return Expiration{}
}

// AtUTC is the expiry-time of a persistent cookie expiring at the given
// instant. The instant is stored in UTC at second precision, which is
// also the precision of the persisted representation.
func AtUTC(t time.Time) Expiration {
	return Expiration{atUTC: t.UTC().Truncate(time.Second), persistent: true}
}

// FromExpires resolves an Expires attribute value.
func FromExpires(t time.Time) Expiration {
	return AtUTC(t)
}

// FromMaxAge resolves a Max-Age attribute value of deltaSeconds as of
// now.
//
// §  5.2.2. The Max-Age Attribute
// §
// §  If delta-seconds is less than or equal to zero (0), let expiry-time
// §  be the earliest representable date and time. Otherwise, let the
// §  expiry-time be the current date and time plus delta-seconds seconds.
func FromMaxAge(now time.Time, deltaSeconds int64) Expiration {
	if deltaSeconds <= 0 {
		return AtUTC(EarliestExpiry)
	}
	if deltaSeconds > math.MaxInt64/int64(time.Second) {
		return AtUTC(LatestExpiry)
	}
	expiry := now.Add(time.Duration(deltaSeconds) * time.Second)
	if expiry.After(LatestExpiry) {
		expiry = LatestExpiry
	}
	return AtUTC(expiry)
}

// Expired is the expiry-time written by expiring a cookie in place:
// the earliest representable instant.
func Expired() Expiration {
	return AtUTC(EarliestExpiry)
}

// IsPersistent reports whether the expiry-time is an absolute instant.
func (e Expiration) IsPersistent() bool {
	return e.persistent
}

// Time returns the absolute expiry instant, with ok == false for a
// session cookie.
func (e Expiration) Time() (t time.Time, ok bool) {
	return e.atUTC, e.persistent
}

// ExpiresBy reports whether the cookie is expired as of instant t. A
// session cookie never expires by any supplied instant; end-of-session
// expiry is not an instant this package knows about.
func (e Expiration) ExpiresBy(t time.Time) bool {
	if !e.persistent {
		return false
	}
	return !e.atUTC.After(t)
}
