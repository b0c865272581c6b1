// Package httpjar adapts a cookiestore.CookieStore to net/http's
// CookieJar interface, so an http.Client can use the store directly.
//
// The core store deliberately does no locking; this adapter supplies
// the reader/writer lock, making it safe for concurrent use by
// multiple goroutines as the CookieJar contract requires.
package httpjar

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	cookiestore "github.com/always-cache/cookie-store"

	"github.com/rs/zerolog/log"
)

type Jar struct {
	mutex sync.RWMutex
	store *cookiestore.CookieStore
}

// New wraps the given store. A nil store gets replaced by an empty one.
func New(store *cookiestore.CookieStore) *Jar {
	if store == nil {
		store = cookiestore.New()
	}
	return &Jar{store: store}
}

// SetCookies handles the receipt of the cookies in a reply for the
// given URL. Cookies that fail validation against u are skipped, which
// the CookieJar contract allows ("may or may not choose to save the
// cookies").
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	for _, raw := range cookies {
		if _, err := j.store.InsertRaw(raw, u); err != nil {
			log.Debug().
				Err(err).
				Str("cookie", raw.Name).
				Str("url", u.String()).
				Msg("Rejecting cookie")
		}
	}
}

// Cookies returns the unexpired cookies to send in a request for the
// given URL. Only the name and value are populated, which is all a
// Cookie request header carries.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	now := time.Now()
	cookies := make([]*http.Cookie, 0)
	for _, cookie := range j.store.Matches(u) {
		if cookie.IsExpiredAt(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:  cookie.Name(),
			Value: cookie.Value(),
		})
	}
	return cookies
}

// Update runs fn with exclusive access to the underlying store, for
// mutations beyond SetCookies (expiring, clearing, loading).
func (j *Jar) Update(fn func(*cookiestore.CookieStore)) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	fn(j.store)
}

// View runs fn with shared access to the underlying store, for reads
// and saves. The store must not be mutated from fn.
func (j *Jar) View(fn func(*cookiestore.CookieStore)) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	fn(j.store)
}
