package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	cookiestore "github.com/always-cache/cookie-store"
	"github.com/always-cache/cookie-store/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func testServer() server {
	return server{
		jars:   storage.NewMemStorage(),
		encode: cookiestore.EncodeJSON,
		decode: cookiestore.DecodeJSON,
	}
}

func do(t *testing.T, srv server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	return rec
}

func TestSetAndGetCookies(t *testing.T) {
	srv := testServer()
	target := "/jars/default/cookies?url=" + url.QueryEscape("http://example.com/foo/bar")

	rec := do(t, srv, http.MethodPost, target, "a=1; Max-Age=3600\nb=2; Path=/\n")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST status = %d, body %q", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body %q", rec.Code, rec.Body.String())
	}
	var cookies []cookieInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &cookies); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, expected 2: %v", len(cookies), cookies)
	}

	// a request URL outside the defaulted /foo path only sees b
	rec = do(t, srv, http.MethodGet, "/jars/default/cookies?url="+url.QueryEscape("http://example.com/elsewhere"), "")
	cookies = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &cookies); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "b" {
		t.Errorf("got %v, expected b only", cookies)
	}
}

func TestSetCookiesRejects(t *testing.T) {
	srv := testServer()
	target := "/jars/default/cookies?url=" + url.QueryEscape("http://example.com/")

	rec := do(t, srv, http.MethodPost, target, "a=1; Domain=other.org\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST status = %d, expected 422", rec.Code)
	}

	// no url parameter at all
	rec = do(t, srv, http.MethodPost, "/jars/default/cookies", "a=1\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST without url status = %d, expected 400", rec.Code)
	}
}

func TestListAndPurgeJars(t *testing.T) {
	srv := testServer()
	target := "/jars/default/cookies?url=" + url.QueryEscape("http://example.com/")
	do(t, srv, http.MethodPost, target, "a=1; Max-Age=3600\n")

	rec := do(t, srv, http.MethodGet, "/jars", "")
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if len(names) != 1 || names[0] != "default" {
		t.Errorf("jars = %v, expected [default]", names)
	}

	rec = do(t, srv, http.MethodDelete, "/jars/default", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/jars", "")
	names = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("jars after purge = %v, expected none", names)
	}
}
