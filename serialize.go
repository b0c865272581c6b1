package cookiestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/always-cache/cookie-store/rfc6265"

	"gopkg.in/yaml.v3"
)

// EncodeFunc serializes the persisted document to bytes. json.Marshal
// and yaml.Marshal (or wrappers around them) both fit.
type EncodeFunc func(v any) ([]byte, error)

// DecodeFunc deserializes the persisted document from bytes.
type DecodeFunc func(data []byte, v any) error

const expiryFormat = "2006-01-02T15:04:05Z"

// storeDocument is the persisted representation of a store: a single
// document holding a sequence of cookie records. The schema is shared
// by all encodings.
type storeDocument struct {
	Cookies []cookieRecord `json:"cookies" yaml:"cookies"`
}

// cookieRecord is one persisted cookie:
//
//	{
//	  "raw_cookie": "name=value; Path=/; ...",
//	  "path": ["/", true],
//	  "domain": {"HostOnly": "example.com"},
//	  "expires": {"AtUtc": "2100-08-03T00:38:37Z"}
//	}
type cookieRecord struct {
	RawCookie string        `json:"raw_cookie" yaml:"raw_cookie"`
	Path      pathRecord    `json:"path" yaml:"path"`
	Domain    domainRecord  `json:"domain" yaml:"domain"`
	Expires   expiresRecord `json:"expires" yaml:"expires"`
}

// pathRecord serializes as the two-element sequence
// [path, from-attribute].
type pathRecord struct {
	Value         string
	FromAttribute bool
}

func (p pathRecord) tuple() []any {
	return []any{p.Value, p.FromAttribute}
}

func (p *pathRecord) fromTuple(parts []any) error {
	if len(parts) != 2 {
		return fmt.Errorf("cookie path: expected [path, from-attribute], got %d elements", len(parts))
	}
	value, okValue := parts[0].(string)
	fromAttr, okFlag := parts[1].(bool)
	if !okValue || !okFlag {
		return fmt.Errorf("cookie path: expected [string, bool], got %v", parts)
	}
	p.Value = value
	p.FromAttribute = fromAttr
	return nil
}

func (p pathRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.tuple())
}

func (p *pathRecord) UnmarshalJSON(data []byte) error {
	var parts []any
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	return p.fromTuple(parts)
}

func (p pathRecord) MarshalYAML() (any, error) {
	return p.tuple(), nil
}

func (p *pathRecord) UnmarshalYAML(node *yaml.Node) error {
	var parts []any
	if err := node.Decode(&parts); err != nil {
		return err
	}
	return p.fromTuple(parts)
}

// domainRecord serializes as a single-key mapping, the key naming the
// scope kind: {"HostOnly": host} or {"Suffix": domain}.
type domainRecord struct {
	Kind  string
	Value string
}

const (
	domainKindHostOnly = "HostOnly"
	domainKindSuffix   = "Suffix"
)

func (d domainRecord) mapping() map[string]string {
	return map[string]string{d.Kind: d.Value}
}

func (d *domainRecord) fromMapping(m map[string]string) error {
	if len(m) != 1 {
		return fmt.Errorf("cookie domain: expected a single %q or %q key, got %v", domainKindHostOnly, domainKindSuffix, m)
	}
	for kind, value := range m {
		if kind != domainKindHostOnly && kind != domainKindSuffix {
			return fmt.Errorf("cookie domain: unknown kind %q", kind)
		}
		d.Kind = kind
		d.Value = value
	}
	return nil
}

func (d domainRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.mapping())
}

func (d *domainRecord) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return d.fromMapping(m)
}

func (d domainRecord) MarshalYAML() (any, error) {
	return d.mapping(), nil
}

func (d *domainRecord) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}
	return d.fromMapping(m)
}

// expiresRecord serializes as the bare string "SessionEnd" or as
// {"AtUtc": "<RFC3339 UTC, second precision, Z suffix>"}.
type expiresRecord struct {
	Session bool
	AtUTC   time.Time
}

const (
	expiresKindSession = "SessionEnd"
	expiresKindAtUTC   = "AtUtc"
)

func (e expiresRecord) value() any {
	if e.Session {
		return expiresKindSession
	}
	return map[string]string{expiresKindAtUTC: e.AtUTC.UTC().Format(expiryFormat)}
}

func (e *expiresRecord) fromParts(s string, m map[string]string) error {
	if s != "" {
		if s != expiresKindSession {
			return fmt.Errorf("cookie expiry: unknown kind %q", s)
		}
		e.Session = true
		return nil
	}
	stamp, ok := m[expiresKindAtUTC]
	if !ok || len(m) != 1 {
		return fmt.Errorf("cookie expiry: expected %q or an %q mapping, got %v", expiresKindSession, expiresKindAtUTC, m)
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return fmt.Errorf("cookie expiry: %w", err)
	}
	e.AtUTC = t.UTC()
	return nil
}

func (e expiresRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.value())
}

func (e *expiresRecord) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return e.fromParts(s, nil)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return e.fromParts("", m)
}

func (e expiresRecord) MarshalYAML() (any, error) {
	return e.value(), nil
}

func (e *expiresRecord) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		return e.fromParts(s, nil)
	}
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}
	return e.fromParts("", m)
}

// record converts a cookie into its persisted form.
func (c *Cookie) record() cookieRecord {
	rec := cookieRecord{
		RawCookie: c.String(),
		Path: pathRecord{
			Value:         c.path.String(),
			FromAttribute: c.path.FromAttribute(),
		},
	}
	if suffix, err := c.domain.Suffix(); err == nil {
		rec.Domain = domainRecord{Kind: domainKindSuffix, Value: suffix}
	} else {
		rec.Domain = domainRecord{Kind: domainKindHostOnly, Value: c.domain.String()}
	}
	if t, ok := c.expires.Time(); ok {
		rec.Expires = expiresRecord{AtUTC: t}
	} else {
		rec.Expires = expiresRecord{Session: true}
	}
	return rec
}

// cookieFromRecord reconstructs a cookie from its persisted form. The
// scopes are trusted as stored; only the raw cookie text is re-parsed.
func cookieFromRecord(rec cookieRecord) (*Cookie, error) {
	raw, err := http.ParseSetCookie(rec.RawCookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	cookie := &Cookie{
		raw:  *raw,
		path: rfc6265.PathOf(rec.Path.Value, rec.Path.FromAttribute),
	}
	if rec.Domain.Kind == domainKindSuffix {
		cookie.domain = rfc6265.SuffixDomain(rec.Domain.Value)
	} else {
		cookie.domain = rfc6265.HostOnlyDomain(rec.Domain.Value)
	}
	if rec.Expires.Session {
		cookie.expires = rfc6265.SessionEnd()
	} else {
		cookie.expires = rfc6265.AtUTC(rec.Expires.AtUTC)
	}
	return cookie, nil
}

// Load reads a serialized store from r, decoding with decode, skipping
// any cookies that have expired by load time. The skip is permanent:
// dropped cookies never enter the index and cannot later be recovered
// from the store.
func Load(r io.Reader, decode DecodeFunc) (*CookieStore, error) {
	return load(r, decode, false)
}

// LoadAll reads a serialized store from r, decoding with decode,
// keeping both unexpired and expired cookies.
func LoadAll(r io.Reader, decode DecodeFunc) (*CookieStore, error) {
	return load(r, decode, true)
}

func load(r io.Reader, decode DecodeFunc, includeExpired bool) (*CookieStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading cookie store: %w", err)
	}
	var doc storeDocument
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding cookie store: %w", err)
	}
	return FromCookies(func(yield func(*Cookie, error) bool) {
		for _, rec := range doc.Cookies {
			if !yield(cookieFromRecord(rec)) {
				return
			}
		}
	}, includeExpired)
}

// Save serializes every persistent, unexpired cookie with encode and
// writes the result to w, terminated by a single trailing newline.
func (s *CookieStore) Save(w io.Writer, encode EncodeFunc) error {
	doc := storeDocument{Cookies: make([]cookieRecord, 0)}
	for cookie := range s.IterUnexpired() {
		if cookie.IsPersistent() {
			doc.Cookies = append(doc.Cookies, cookie.record())
		}
	}
	return write(w, encode, doc)
}

// SaveAll serializes every cookie, including expired and non-persistent
// ones, with encode and writes the result to w, terminated by a single
// trailing newline.
func (s *CookieStore) SaveAll(w io.Writer, encode EncodeFunc) error {
	doc := storeDocument{Cookies: make([]cookieRecord, 0)}
	for cookie := range s.IterAny() {
		doc.Cookies = append(doc.Cookies, cookie.record())
	}
	return write(w, encode, doc)
}

func write(w io.Writer, encode EncodeFunc, doc storeDocument) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encoding cookie store: %w", err)
	}
	data = append(bytes.TrimRight(data, "\n"), '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing cookie store: %w", err)
	}
	return nil
}

// EncodeJSON and DecodeJSON are the JSON encoding of the persisted
// schema. The encoded form is indented, matching what browsers of the
// file expect from a cookies.json.
func EncodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func DecodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// LoadJSON reads a JSON-serialized store, skipping expired cookies.
func LoadJSON(r io.Reader) (*CookieStore, error) {
	return Load(r, DecodeJSON)
}

// LoadAllJSON reads a JSON-serialized store, keeping expired cookies.
func LoadAllJSON(r io.Reader) (*CookieStore, error) {
	return LoadAll(r, DecodeJSON)
}

// SaveJSON writes every persistent, unexpired cookie as JSON.
func (s *CookieStore) SaveJSON(w io.Writer) error {
	return s.Save(w, EncodeJSON)
}

// SaveAllJSON writes every cookie as JSON.
func (s *CookieStore) SaveAllJSON(w io.Writer) error {
	return s.SaveAll(w, EncodeJSON)
}

// LoadYAML reads a YAML-serialized store, skipping expired cookies.
func LoadYAML(r io.Reader) (*CookieStore, error) {
	return Load(r, yaml.Unmarshal)
}

// LoadAllYAML reads a YAML-serialized store, keeping expired cookies.
func LoadAllYAML(r io.Reader) (*CookieStore, error) {
	return LoadAll(r, yaml.Unmarshal)
}

// SaveYAML writes every persistent, unexpired cookie as YAML.
func (s *CookieStore) SaveYAML(w io.Writer) error {
	return s.Save(w, yaml.Marshal)
}

// SaveAllYAML writes every cookie as YAML.
func (s *CookieStore) SaveAllYAML(w io.Writer) error {
	return s.SaveAll(w, yaml.Marshal)
}
