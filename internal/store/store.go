package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// Bucket names
var (
	bucketSession = []byte("session")
	bucketCatalog = []byte("catalog")
)

// Keys
const (
	keyLink   = "link"
	keyGenres = "genres"
)

// genreCacheTTL bounds how long a stored genre list is trusted
const genreCacheTTL = 24 * time.Hour

// genresRecord is the stored genre list
type genresRecord struct {
	Genres   []domain.Genre `json:"genres"`
	StoredAt time.Time      `json:"stored_at"`
}

// SessionStore implements domain.SessionStore using BoltDB.
type SessionStore struct {
	db  *bolt.DB
	mu  sync.RWMutex // Protects memory cache
	now func() time.Time

	// In-memory copy of everything read or written
	cache map[string][]byte
}

// NewSessionStore opens the store for serverURL under baseCacheDir.
// An empty baseCacheDir keeps everything in memory.
func NewSessionStore(baseCacheDir, serverURL string) (*SessionStore, error) {
	if baseCacheDir == "" {
		return &SessionStore{cache: make(map[string][]byte), now: time.Now}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "kinoteka.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketCatalog} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte), now: time.Now}, nil
}

// hashServerURL keeps state of different backends apart
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetLink returns the last stored link
func (s *SessionStore) GetLink() (string, bool) {
	var link string
	if !s.get(bucketSession, keyLink, &link) || link == "" {
		return "", false
	}
	return link, true
}

// SaveLink stores link, clearing it when empty
func (s *SessionStore) SaveLink(link string) error {
	if link == "" {
		return s.delete(bucketSession, keyLink)
	}
	return s.set(bucketSession, keyLink, link)
}

// GetGenres returns the stored genre list if it is recent enough
func (s *SessionStore) GetGenres() ([]domain.Genre, bool) {
	var rec genresRecord
	if !s.get(bucketCatalog, keyGenres, &rec) {
		return nil, false
	}
	if s.now().Sub(rec.StoredAt) > genreCacheTTL || len(rec.Genres) == 0 {
		return nil, false
	}
	return rec.Genres, true
}

// SaveGenres stores the genre list
func (s *SessionStore) SaveGenres(genres []domain.Genre) error {
	return s.set(bucketCatalog, keyGenres, genresRecord{Genres: genres, StoredAt: s.now()})
}

// === Generic helpers ===

func (s *SessionStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *SessionStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}
