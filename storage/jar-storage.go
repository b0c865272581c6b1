// Package storage persists serialized cookie jars under a jar name, so
// that several user agents can keep their cookies in one place (for
// instance one SQLite file shared by many sessions). It stores opaque
// blobs; encoding and decoding is the cookiestore package's business.
package storage

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// JarStorage is an interface for a jar persistence provider.
// It stores and retrieves []byte values, which represent serialized
// cookie stores, keyed by jar name. It also keeps track of when each
// jar was last written.
//
// Implementations must be thread-safe!
type JarStorage interface {
	// AllNames calls the given callback for each stored jar name.
	// It calls the callback in order to enable very large lists of
	// jars to be processable.
	AllNames(cb func(string))
	// Load returns the serialized jar stored under the given name, if
	// it exists. It also returns a boolean indicating whether
	// retrieval was successful.
	Load(name string) (JarEntry, bool, error)
	// Save stores the given serialized jar under the given name,
	// recording the modification time.
	Save(name string, modified time.Time, data []byte) error
	// Purge removes the jar stored under the given name.
	Purge(name string)
	// Has checks if a jar with the given name exists.
	Has(name string) bool
}

type JarEntry struct {
	Name     string
	Modified time.Time
	Data     []byte
}

type memJarEntry struct {
	modified time.Time
	data     []byte
}

type MemStorage struct {
	mutex *sync.RWMutex
	jars  map[string]memJarEntry
}

func NewMemStorage() MemStorage {
	return MemStorage{
		mutex: &sync.RWMutex{},
		jars:  make(map[string]memJarEntry),
	}
}

func (m MemStorage) AllNames(cb func(string)) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for name := range m.jars {
		cb(name)
	}
}

func (m MemStorage) Load(name string) (JarEntry, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entry, ok := m.jars[name]
	if !ok {
		return JarEntry{}, false, nil
	}
	return JarEntry{Name: name, Modified: entry.modified, Data: entry.data}, true, nil
}

func (m MemStorage) Save(name string, modified time.Time, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jars[name] = memJarEntry{modified, data}
	return nil
}

func (m MemStorage) Purge(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.jars, name)
}

func (m MemStorage) Has(name string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.jars[name]
	return ok
}

type SQLiteStorage struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStorage creates a new jar storage with the given filename as
// the db. If the file name is empty, a new in-memory db is opened.
func NewSQLiteStorage(filename string) SQLiteStorage {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS jars (
		name TEXT PRIMARY KEY,
		modified INTEGER,
		data BLOB
	)`)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteStorage{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteStorage) AllNames(cb func(string)) {
	rows, err := s.db.Query("SELECT name FROM jars")
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return
		}
		cb(name)
	}
}

func (s SQLiteStorage) Load(name string) (JarEntry, bool, error) {
	var modified int64
	var data []byte
	err := s.db.QueryRow("SELECT modified, data FROM jars WHERE name = ?", name).Scan(&modified, &data)
	if err == sql.ErrNoRows {
		return JarEntry{}, false, nil
	}
	if err != nil {
		return JarEntry{}, false, err
	}
	return JarEntry{Name: name, Modified: time.Unix(modified, 0), Data: data}, true, nil
}

func (s SQLiteStorage) Save(name string, modified time.Time, data []byte) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO jars (name, modified, data) VALUES (?, ?, ?)",
		name, modified.Unix(), data)
	return err
}

func (s SQLiteStorage) Purge(name string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM jars WHERE name = ?", name)
	if err != nil {
		panic(err)
	}
}

func (s SQLiteStorage) Has(name string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM jars WHERE name = ?", name).Scan(&one)
	return err == nil
}
