package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/logging"

	"github.com/patrickmn/go-cache"
)

// Store persists JSON documents as one file per key, grouped into named
// collections (subdirectories). Saves are atomic: readers observe either the
// fully-old or fully-new document, never a partial write.
type Store struct {
	dir   string
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a document store rooted at dir
func New(dir string, cacheTTL time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.IOFailure("failed to create data directory", err)
	}

	return &Store{
		dir:   dir,
		cache: cache.New(cacheTTL, 10*time.Minute),
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

// Collection returns a named document collection, creating its directory if
// needed
func (s *Store) Collection(name string) (*Collection, error) {
	dir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.IOFailure(fmt.Sprintf("failed to create %s directory", name), err)
	}

	return &Collection{store: s, name: name, dir: dir}, nil
}

// Collection is a namespaced set of documents, one JSON file per key
type Collection struct {
	store *Store
	name  string
	dir   string
}

// Lock serializes load-mutate-save cycles on one key. Operations on different
// keys proceed in parallel. The returned function releases the lock.
func (c *Collection) Lock(key string) func() {
	lockKey := c.name + "/" + key

	c.store.mu.Lock()
	mu, ok := c.store.locks[lockKey]
	if !ok {
		mu = &sync.Mutex{}
		c.store.locks[lockKey] = mu
	}
	c.store.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Load reads the document for key into the target. A missing document is not
// an error: Load returns found=false and leaves the target untouched, so the
// caller's pre-filled default stands.
func (c *Collection) Load(key string, into interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	cacheKey := c.name + "/" + key
	if cached, ok := c.store.cache.Get(cacheKey); ok {
		if data, ok := cached.([]byte); ok {
			if err := json.Unmarshal(data, into); err != nil {
				return false, apperrors.IOFailure("failed to parse cached document", err)
			}
			return true, nil
		}
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperrors.IOFailure("failed to read document", err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, apperrors.IOFailure("failed to parse document", err)
	}

	c.store.cache.Set(cacheKey, data, cache.DefaultExpiration)
	return true, nil
}

// Save atomically persists the document for key: the JSON is written to a
// temporary file in the same directory and renamed over the target. On
// failure the prior persisted state remains intact.
func (c *Collection) Save(key string, doc interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.IOFailure("failed to encode document", err)
	}

	tmp, err := os.CreateTemp(c.dir, "."+key+"-*.tmp")
	if err != nil {
		return apperrors.IOFailure("failed to create temporary file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.IOFailure("failed to write document", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.IOFailure("failed to flush document", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.IOFailure("failed to close temporary file", err)
	}

	if err := os.Rename(tmpName, c.path(key)); err != nil {
		os.Remove(tmpName)
		return apperrors.IOFailure("failed to replace document", err)
	}

	c.store.cache.Set(c.name+"/"+key, data, cache.DefaultExpiration)
	logging.WithStore(c.name, key).Debug("document persisted", "bytes", len(data))
	return nil
}

func (c *Collection) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// validateKey rejects keys that would escape the collection directory
func validateKey(key string) error {
	if key == "" {
		return apperrors.InvalidArgument("document key is required")
	}
	if key == "." || key == ".." ||
		strings.ContainsAny(key, "/\\") ||
		strings.Contains(key, "..") {
		return apperrors.InvalidArgument("invalid document key")
	}
	return nil
}
