package rfc6265

import (
	"net/url"
	"strings"
)

// Path is the path scope carried by a stored cookie: the path string
// plus a flag recording whether it came from an explicit Path attribute
// or was computed as the default-path of the request URL. The string
// always begins with "/".
type Path struct {
	value    string
	fromAttr bool
}

// PathOf builds a path scope from its parts, without validation. It is
// intended for reconstructing persisted cookies; new cookies should go
// through PathFrom.
func PathOf(value string, fromAttribute bool) Path {
	return Path{value: value, fromAttr: fromAttribute}
}

// PathFrom resolves the path scope for a cookie with Path attribute
// value attr (empty if absent) received from requestURL.
//
// §  5.2.4. The Path Attribute
// §
// §  If the attribute-value is empty or if the first character of the
// §  attribute-value is not %x2F ("/"):
// §
// §     Let cookie-path be the default-path.
// §
// §  Otherwise:
// §
// §     Let cookie-path be the attribute-value.
func PathFrom(attr string, requestURL *url.URL) Path {
	if value, ok := ParsePathAttribute(attr); ok {
		return Path{value: value, fromAttr: true}
	}
	return Path{value: DefaultPath(requestURL), fromAttr: false}
}

// ParsePathAttribute returns the Path attribute value unchanged if it is
// usable as a cookie-path, or ok == false to signal that the
// default-path applies.
func ParsePathAttribute(attr string) (value string, ok bool) {
	if !strings.HasPrefix(attr, "/") {
		return "", false
	}
	return attr, true
}

// DefaultPath computes the default-path of a cookie set from requestURL.
//
// §  5.1.4. Paths and Path-Match
// §
// §  The user agent MUST use an algorithm equivalent to the following
// §  algorithm to compute the default-path of a cookie:
// §
// §  1.  Let uri-path be the path portion of the request-uri if such a
// §      portion exists (and empty otherwise).
// §
// §  2.  If the uri-path is empty or if the first character of the uri-
// §      path is not a %x2F ("/") character, output %x2F ("/") and skip
// §      the remaining steps.
// §
// §  3.  If the uri-path contains no more than one %x2F ("/") character,
// §      output %x2F ("/") and skip the remaining step.
// §
// §  4.  Output the characters of the uri-path from the first character up
// §      to, but not including, the right-most %x2F ("/").
func DefaultPath(requestURL *url.URL) string {
	uriPath := requestURL.Path
	if uriPath == "" || !strings.HasPrefix(uriPath, "/") {
		return "/"
	}
	lastSlash := strings.LastIndex(uriPath, "/")
	if lastSlash == 0 {
		return "/"
	}
	return uriPath[:lastSlash]
}

// String returns the cookie-path string.
func (p Path) String() string {
	return p.value
}

// FromAttribute reports whether the path came from an explicit Path
// attribute rather than being defaulted from the request URL.
func (p Path) FromAttribute() bool {
	return p.fromAttr
}

// Match reports whether the scope covers the path of requestURL.
func (p Path) Match(requestURL *url.URL) bool {
	requestPath := requestURL.Path
	if requestPath == "" {
		requestPath = "/"
	}
	return PathMatch(p.value, requestPath)
}

// PathMatch implements the path-match algorithm deciding whether
// cookiePath covers requestPath.
//
// §  A request-path path-matches a given cookie-path if at least one of
// §  the following conditions holds:
// §
// §  o  The cookie-path and the request-path are identical.
// §
// §  o  The cookie-path is a prefix of the request-path, and the last
// §     character of the cookie-path is %x2F ("/").
// §
// §  o  The cookie-path is a prefix of the request-path, and the first
// §     character of the request-path that is not included in the cookie-
// §     path is a %x2F ("/") character.
func PathMatch(cookiePath, requestPath string) bool {
	if cookiePath == requestPath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if strings.HasSuffix(cookiePath, "/") {
		return true
	}
	return requestPath[len(cookiePath)] == '/'
}
