// Package cache persists parse results keyed by content hash so unchanged
// files skip reparsing across runs. The on-disk format is JSON; writes are
// atomic (write-temp then rename). A small LRU sits in front of the disk map
// for repeated lookups within one process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/archlint/archlint/internal/archerr"
	"github.com/archlint/archlint/internal/parser"
)

const (
	cacheDirName  = ".archlint-cache"
	cacheFileName = "cache.json"
	// Version is bumped whenever the ParsedFile model changes shape.
	Version = "2"

	lruSize = 4096
)

// Meta validates a cache file against the current scan.
type Meta struct {
	Version    string    `json:"version"`
	AppVersion string    `json:"appVersion"`
	ConfigHash string    `json:"configHash"`
	GitHead    string    `json:"gitHead,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FileEntry is one cached parse.
type FileEntry struct {
	ContentHash string             `json:"contentHash"`
	Parsed      *parser.ParsedFile `json:"parsed"`
}

type cacheData struct {
	Meta     Meta                 `json:"meta"`
	Entries  map[string]FileEntry `json:"entries"`
	ChurnMap map[string]int       `json:"churnMap,omitempty"`
}

// Cache is the process-wide analysis cache. Reads may happen from many
// goroutines; Insert and Save must be serialized by the orchestrator
// (single-writer).
type Cache struct {
	file  string
	data  cacheData
	hot   *lru.Cache[string, *parser.ParsedFile]
	dirty bool
}

// Dir resolves the cache directory for a project: node_modules/.cache when a
// node_modules directory exists, .archlint-cache otherwise.
func Dir(projectRoot string) string {
	nm := filepath.Join(projectRoot, "node_modules")
	if info, err := os.Stat(nm); err == nil && info.IsDir() {
		return filepath.Join(nm, ".cache", "archlint")
	}
	return filepath.Join(projectRoot, cacheDirName)
}

// Load opens the cache for projectRoot. A cache whose meta does not match
// (version, appVersion, configHash) is discarded wholesale. A git HEAD
// mismatch only drops the churn map.
func Load(projectRoot, appVersion, configHash, gitHead string) (*Cache, error) {
	file := filepath.Join(Dir(projectRoot), cacheFileName)
	hot, _ := lru.New[string, *parser.ParsedFile](lruSize)

	c := &Cache{file: file, hot: hot}
	c.data = emptyData(appVersion, configHash, gitHead)

	raw, err := os.ReadFile(file)
	if err != nil {
		return c, nil
	}

	var loaded cacheData
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return c, nil
	}
	if loaded.Meta.Version != Version ||
		loaded.Meta.AppVersion != appVersion ||
		loaded.Meta.ConfigHash != configHash {
		return c, nil
	}
	if loaded.Meta.GitHead != gitHead {
		loaded.ChurnMap = nil
		loaded.Meta.GitHead = gitHead
	}
	if loaded.Entries == nil {
		loaded.Entries = map[string]FileEntry{}
	}
	c.data = loaded
	return c, nil
}

func emptyData(appVersion, configHash, gitHead string) cacheData {
	return cacheData{
		Meta: Meta{
			Version:    Version,
			AppVersion: appVersion,
			ConfigHash: configHash,
			GitHead:    gitHead,
			CreatedAt:  time.Now().UTC(),
		},
		Entries: map[string]FileEntry{},
	}
}

// Get returns the cached parse for path iff the content hash matches.
func (c *Cache) Get(path, contentHash string) *parser.ParsedFile {
	if parsed, ok := c.hot.Get(path + "\x00" + contentHash); ok {
		return parsed
	}
	entry, ok := c.data.Entries[path]
	if !ok || entry.ContentHash != contentHash {
		return nil
	}
	c.hot.Add(path+"\x00"+contentHash, entry.Parsed)
	return entry.Parsed
}

// Insert records a fresh parse for path.
func (c *Cache) Insert(path, contentHash string, parsed *parser.ParsedFile) {
	c.data.Entries[path] = FileEntry{ContentHash: contentHash, Parsed: parsed}
	c.hot.Add(path+"\x00"+contentHash, parsed)
	c.dirty = true
}

// ChurnMap returns the cached churn map, or nil when absent.
func (c *Cache) ChurnMap() map[string]int {
	if len(c.data.ChurnMap) == 0 {
		return nil
	}
	return c.data.ChurnMap
}

// SetChurnMap stores the churn map for the current git HEAD.
func (c *Cache) SetChurnMap(m map[string]int) {
	c.data.ChurnMap = m
	c.dirty = true
}

// Save writes the cache atomically if anything changed.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.file), 0o755); err != nil {
		return archerr.Wrap(archerr.KindIo, "create cache directory", err)
	}
	raw, err := json.MarshalIndent(&c.data, "", "  ")
	if err != nil {
		return archerr.Wrap(archerr.KindInternal, "encode cache", err)
	}
	tmp := c.file + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return archerr.Wrap(archerr.KindIo, "write cache", err)
	}
	if err := os.Rename(tmp, c.file); err != nil {
		return archerr.Wrap(archerr.KindIo, "replace cache file", err)
	}
	c.dirty = false
	return nil
}

// Clear removes all cache locations for a project.
func Clear(projectRoot string) error {
	locations := []string{
		filepath.Join(projectRoot, cacheDirName),
		filepath.Join(projectRoot, "node_modules", ".cache", "archlint"),
	}
	for _, dir := range locations {
		if err := os.RemoveAll(dir); err != nil {
			return archerr.Wrap(archerr.KindIo, "remove cache directory", err)
		}
	}
	return nil
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileContentHash hashes the file at path.
func FileContentHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", archerr.Wrap(archerr.KindIo, "read file for hashing", err)
	}
	return ContentHash(data), nil
}
