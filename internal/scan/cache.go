package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ben-ranford/phpext/internal/classify"
	"github.com/ben-ranford/phpext/internal/deps"
	"github.com/ben-ranford/phpext/internal/safeio"
)

const cacheSchemaVersion = "v1"

// CacheStats counts cache traffic for one run.
type CacheStats struct {
	Path   string `json:"path"`
	Hits   int    `json:"hits"`
	Misses int    `json:"misses"`
	Writes int    `json:"writes"`
}

type cachedFile struct {
	Schema  string            `json:"schema"`
	Modules []string          `json:"modules"`
	Symbols []classify.Symbol `json:"symbols,omitempty"`
}

// Cache stores per-file classification results keyed by file content and the
// catalog that resolved them. Safe for concurrent use.
type Cache struct {
	dir    string
	digest string

	mu    sync.Mutex
	stats CacheStats
}

// OpenCache prepares dir for use. catalogDigest must change whenever symbol
// resolution would.
func OpenCache(dir, catalogDigest string) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o750); err != nil {
		return nil, err
	}
	return &Cache{
		dir:    dir,
		digest: catalogDigest,
		stats:  CacheStats{Path: dir},
	}, nil
}

func (c *Cache) key(content []byte) string {
	hasher := sha256.New()
	_, _ = hasher.Write([]byte(cacheSchemaVersion))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(c.digest))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, "files", key[:2], key+".json")
}

// Lookup returns the stored result for content. Missing, unreadable or
// corrupt entries are misses.
func (c *Cache) Lookup(content []byte) (classify.Result, bool) {
	data, err := safeio.ReadFileUnder(c.dir, c.entryPath(c.key(content)))
	if err != nil {
		c.count(func(s *CacheStats) { s.Misses++ })
		return classify.Result{}, false
	}
	var entry cachedFile
	if err := json.Unmarshal(data, &entry); err != nil || entry.Schema != cacheSchemaVersion {
		c.count(func(s *CacheStats) { s.Misses++ })
		return classify.Result{}, false
	}
	c.count(func(s *CacheStats) { s.Hits++ })
	return classify.Result{
		Modules: deps.NewSet(entry.Modules...),
		Symbols: entry.Symbols,
	}, true
}

// Store records result for content.
func (c *Cache) Store(content []byte, result classify.Result) error {
	payload, err := json.Marshal(cachedFile{
		Schema:  cacheSchemaVersion,
		Modules: result.Modules.Sorted(),
		Symbols: result.Symbols,
	})
	if err != nil {
		return err
	}
	if err := writeFileAtomic(c.entryPath(c.key(content)), payload); err != nil {
		return err
	}
	c.count(func(s *CacheStats) { s.Writes++ })
	return nil
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) count(update func(*CacheStats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
