// Package cookiestore is an in-memory cookie jar conforming to RFC
// 6265. It normalizes parsed Set-Cookie attributes against the request
// URL they were received from, decides whether a stored cookie applies
// to a later request, and maintains a replace-on-write index of cookies
// keyed by origin scope.
//
// The store performs no locking; concurrent mutation requires external
// mutual exclusion (see pkg/http-jar for a locked adapter that plugs
// into net/http).
package cookiestore

import (
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/always-cache/cookie-store/rfc6265"

	"github.com/rs/zerolog/log"
)

// CookieStore is an indexed collection of validated cookies. The index
// is a three-level mapping, domain string to path string to cookie
// name, holding at most one cookie per triple. It is a plain value with
// no lifecycle: constructible, queryable, mutable and serializable in
// any order.
type CookieStore struct {
	cookies map[string]map[string]map[string]*Cookie
	// optional public suffix rejection, applied when parsing into the
	// store
	suffixes rfc6265.PublicSuffixList
}

// New returns an empty store with public suffix rejection disabled.
func New() *CookieStore {
	return &CookieStore{
		cookies: make(map[string]map[string]map[string]*Cookie),
	}
}

// NewWithSuffixes returns an empty store that rejects Domain attributes
// naming a public suffix on the given list.
func NewWithSuffixes(suffixes rfc6265.PublicSuffixList) *CookieStore {
	store := New()
	store.suffixes = suffixes
	return store
}

// FromCookies builds a store from a sequence of fallible cookies. The
// first element-level error aborts the whole batch, discarding any
// partial store built so far. If includeExpired is false, cookies
// already expired at build time are dropped and never enter the index.
func FromCookies(cookies iter.Seq2[*Cookie, error], includeExpired bool) (*CookieStore, error) {
	store := New()
	now := time.Now()
	for cookie, err := range cookies {
		if err != nil {
			return nil, err
		}
		if !includeExpired && cookie.IsExpiredAt(now) {
			log.Debug().
				Str("cookie", cookie.Name()).
				Str("domain", cookie.Domain().String()).
				Msg("Dropping expired cookie")
			continue
		}
		store.Insert(cookie)
	}
	return store, nil
}

// Insert adds the cookie to the store, unconditionally overwriting any
// existing cookie with the same domain, path and name. Neither expiry
// nor value of either cookie is consulted: last write wins. An expired
// replacement is the mechanism by which a server deletes a cookie, so
// it must overwrite a live one.
func (s *CookieStore) Insert(cookie *Cookie) {
	domain := cookie.Domain().String()
	path := cookie.Path().String()

	paths, ok := s.cookies[domain]
	if !ok {
		paths = make(map[string]map[string]*Cookie)
		s.cookies[domain] = paths
	}
	names, ok := paths[path]
	if !ok {
		names = make(map[string]*Cookie)
		paths[path] = names
	}
	names[cookie.Name()] = cookie
}

// ParseInsert parses a Set-Cookie header value received from requestURL
// and inserts the resulting cookie. On validation failure the store is
// left unmodified and the error is returned.
func (s *CookieStore) ParseInsert(setCookie string, requestURL *url.URL) (*Cookie, error) {
	raw, err := http.ParseSetCookie(setCookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return s.InsertRaw(raw, requestURL)
}

// InsertRaw validates already-parsed Set-Cookie attributes received
// from requestURL and inserts the resulting cookie. On validation
// failure the store is left unmodified and the error is returned.
func (s *CookieStore) InsertRaw(raw *http.Cookie, requestURL *url.URL) (*Cookie, error) {
	cookie, err := FromRawCookie(raw, requestURL, s.suffixes)
	if err != nil {
		return nil, err
	}
	s.Insert(cookie)
	return cookie, nil
}

// Get returns the cookie stored under the exact (domain, path, name)
// triple, ignoring expiration.
func (s *CookieStore) Get(domain, path, name string) (*Cookie, bool) {
	cookie, ok := s.cookies[domain][path][name]
	return cookie, ok
}

// Remove deletes the cookie stored under the exact (domain, path, name)
// triple, returning the removed cookie if there was one.
func (s *CookieStore) Remove(domain, path, name string) (*Cookie, bool) {
	names := s.cookies[domain][path]
	cookie, ok := names[name]
	if !ok {
		return nil, false
	}
	delete(names, name)
	if len(names) == 0 {
		delete(s.cookies[domain], path)
		if len(s.cookies[domain]) == 0 {
			delete(s.cookies, domain)
		}
	}
	return cookie, true
}

// Clear empties the index.
func (s *CookieStore) Clear() {
	s.cookies = make(map[string]map[string]map[string]*Cookie)
}

// Matches returns every stored cookie, expired or not, whose scopes and
// flags cover requestURL. Callers wanting only usable cookies must
// additionally filter on IsExpired. Matching is a filtered scan over
// all stored entries; the index only accelerates exact-key operations.
func (s *CookieStore) Matches(requestURL *url.URL) []*Cookie {
	matches := make([]*Cookie, 0)
	for cookie := range s.IterAny() {
		if cookie.Matches(requestURL) {
			matches = append(matches, cookie)
		}
	}
	return matches
}

// IterAny yields every stored cookie regardless of expiry. Iteration
// order follows the index's internal ordering and carries no meaning;
// compare results as sets.
func (s *CookieStore) IterAny() iter.Seq[*Cookie] {
	return func(yield func(*Cookie) bool) {
		for _, paths := range s.cookies {
			for _, names := range paths {
				for _, cookie := range names {
					if !yield(cookie) {
						return
					}
				}
			}
		}
	}
}

// IterUnexpired yields every stored cookie not expired as of now.
func (s *CookieStore) IterUnexpired() iter.Seq[*Cookie] {
	return s.IterUnexpiredAt(time.Now())
}

// IterUnexpiredAt yields every stored cookie not expired as of the
// given instant.
func (s *CookieStore) IterUnexpiredAt(now time.Time) iter.Seq[*Cookie] {
	return func(yield func(*Cookie) bool) {
		for cookie := range s.IterAny() {
			if cookie.IsExpiredAt(now) {
				continue
			}
			if !yield(cookie) {
				return
			}
		}
	}
}
