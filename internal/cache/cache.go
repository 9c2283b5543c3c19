// Package cache is a content-addressed file cache for analysis results. Each
// entry is one JSON file named by the SHA-256 digest of the source image.
// There is no TTL or eviction; clearing is operator-driven.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

// Cache stores analysis results keyed by content digest.
type Cache struct {
	dir string
}

// New creates the cache directory if needed and returns a cache handle.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// FileDigest computes the SHA-256 digest of a file's content with a streaming
// read, so large images never have to be buffered in memory.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) entryPath(digest string) string {
	return filepath.Join(c.dir, digest+".json")
}

// Get returns the cached result for a digest, or nil when absent.
func (c *Cache) Get(digest string) (*estimate.EstimationResult, error) {
	data, err := os.ReadFile(c.entryPath(digest))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var result estimate.EstimationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", digest, err)
	}
	return &result, nil
}

// Set stores or overwrites the result for a digest. Two workers writing the
// same digest concurrently is harmless: results for identical bytes are
// value-equivalent, so last write wins.
func (c *Cache) Set(digest string, result *estimate.EstimationResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryPath(digest), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries and returns the count removed.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return count, fmt.Errorf("failed to remove cache entry: %w", err)
		}
		count++
	}
	log.Info().Int("removed", count).Str("dir", c.dir).Msg("cache cleared")
	return count, nil
}

// Stats reports entry count, total size and location.
type Stats struct {
	EntryCount     int
	TotalSizeBytes int64
	Dir            string
}

// Stats scans the cache directory and reports entry count and total size.
func (c *Cache) Stats() (Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read cache dir: %w", err)
	}

	stats := Stats{Dir: c.dir}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		stats.EntryCount++
		if info, err := entry.Info(); err == nil {
			stats.TotalSizeBytes += info.Size()
		}
	}
	return stats, nil
}
