package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	cookiestore "github.com/always-cache/cookie-store"
	"github.com/always-cache/cookie-store/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	// CLI flags
	portFlag           int
	dbFilenameFlag     string
	formatFlag         string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "jars.db", "Jar DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&formatFlag, "format", "json", "Serialization format for stored jars (json or yaml)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

// server exposes the jars in a storage provider for inspection and
// manipulation over HTTP.
type server struct {
	jars   storage.JarStorage
	encode cookiestore.EncodeFunc
	decode cookiestore.DecodeFunc
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	srv := server{
		encode: cookiestore.EncodeJSON,
		decode: cookiestore.DecodeJSON,
	}
	switch formatFlag {
	case "json":
	case "yaml":
		srv.encode = yaml.Marshal
		srv.decode = yaml.Unmarshal
	default:
		log.Fatal().Str("format", formatFlag).Msg("Unknown serialization format")
	}

	dbFilename := dbFilenameFlag
	if dbFilename == "memory" {
		dbFilename = ""
	}
	srv.jars = storage.NewSQLiteStorage(dbFilename)

	log.Info().Msgf("Serving cookie jars from %q on port %v", dbFilenameFlag, portFlag)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", portFlag), srv.router()); err != nil {
		panic(err)
	}
}

func (s server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/jars", s.listJars)
	r.Get("/jars/{jar}/cookies", s.getCookies)
	r.Post("/jars/{jar}/cookies", s.setCookies)
	r.Delete("/jars/{jar}", s.purgeJar)
	return r
}

// cookieInfo is the response shape for a single cookie.
type cookieInfo struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	HostOnly bool   `json:"host_only"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HttpOnly bool   `json:"http_only"`
	Expires  string `json:"expires,omitempty"`
}

func info(c *cookiestore.Cookie) cookieInfo {
	ci := cookieInfo{
		Name:     c.Name(),
		Value:    c.Value(),
		Domain:   c.Domain().String(),
		HostOnly: c.Domain().IsHostOnly(),
		Path:     c.Path().String(),
		Secure:   c.Secure(),
		HttpOnly: c.HttpOnly(),
	}
	if t, ok := c.Expiration().Time(); ok {
		ci.Expires = t.Format(time.RFC3339)
	}
	return ci
}

func (s server) listJars(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0)
	s.jars.AllNames(func(name string) {
		names = append(names, name)
	})
	sendJSON(w, names)
}

// getCookies lists the cookies in a jar. With a `url` query parameter,
// only unexpired cookies matching that request URL are returned, i.e.
// what a client would actually send there.
func (s server) getCookies(w http.ResponseWriter, r *http.Request) {
	store, err := s.loadJar(chi.URLParam(r, "jar"))
	if err != nil {
		log.Error().Err(err).Msg("Could not load jar")
		http.Error(w, "Could not load jar", http.StatusInternalServerError)
		return
	}

	cookies := make([]cookieInfo, 0)
	if rawURL := r.URL.Query().Get("url"); rawURL != "" {
		requestURL, err := url.Parse(rawURL)
		if err != nil {
			http.Error(w, "Invalid url parameter", http.StatusBadRequest)
			return
		}
		now := time.Now()
		for _, cookie := range store.Matches(requestURL) {
			if !cookie.IsExpiredAt(now) {
				cookies = append(cookies, info(cookie))
			}
		}
	} else {
		for cookie := range store.IterAny() {
			cookies = append(cookies, info(cookie))
		}
	}
	sendJSON(w, cookies)
}

// setCookies inserts cookies into a jar. The body carries one
// Set-Cookie header value per line; the mandatory `url` query parameter
// is the request URL the cookies are taken to be received from.
func (s server) setCookies(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}
	requestURL, err := url.Parse(rawURL)
	if err != nil {
		http.Error(w, "Invalid url parameter", http.StatusBadRequest)
		return
	}

	name := chi.URLParam(r, "jar")
	store, err := s.loadJar(name)
	if err != nil {
		log.Error().Err(err).Msg("Could not load jar")
		http.Error(w, "Could not load jar", http.StatusInternalServerError)
		return
	}

	inserted := 0
	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := store.ParseInsert(line, requestURL); err != nil {
			log.Debug().Err(err).Str("cookie", line).Msg("Rejecting cookie")
			http.Error(w, fmt.Sprintf("Rejected cookie: %v", err), http.StatusUnprocessableEntity)
			return
		}
		inserted++
	}
	if err := scanner.Err(); err != nil {
		http.Error(w, "Could not read request body", http.StatusBadRequest)
		return
	}

	if err := s.saveJar(name, store); err != nil {
		log.Error().Err(err).Str("jar", name).Msg("Could not save jar")
		http.Error(w, "Could not save jar", http.StatusInternalServerError)
		return
	}
	log.Debug().Str("jar", name).Int("inserted", inserted).Msg("Jar updated")
	w.WriteHeader(http.StatusNoContent)
}

func (s server) purgeJar(w http.ResponseWriter, r *http.Request) {
	s.jars.Purge(chi.URLParam(r, "jar"))
	w.WriteHeader(http.StatusNoContent)
}

func (s server) loadJar(name string) (*cookiestore.CookieStore, error) {
	entry, ok, err := s.jars.Load(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cookiestore.New(), nil
	}
	return cookiestore.LoadAll(bytes.NewReader(entry.Data), s.decode)
}

func (s server) saveJar(name string, store *cookiestore.CookieStore) error {
	var buf bytes.Buffer
	if err := store.SaveAll(&buf, s.encode); err != nil {
		return err
	}
	return s.jars.Save(name, time.Now(), buf.Bytes())
}

func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error writing to client")
	}
}
