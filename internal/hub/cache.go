package hub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultCacheMaxAge is how old the content-type cache may get before
// catalog status reports it as stale.
const DefaultCacheMaxAge = 24 * time.Hour

// Cache is the persisted copy of the hub's content-type list.
type Cache struct {
	UpdatedAt    time.Time     `json:"updatedAt"`
	SiteUUID     string        `json:"siteUuid"`
	ContentTypes []ContentType `json:"contentTypes"`
}

// LoadCache reads the cache file.
// Returns nil, nil if the file does not exist (first run).
func LoadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading hub cache: %w", err)
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing hub cache: %w", err)
	}
	return &cache, nil
}

// SaveCache writes the cache file, creating its directory if needed.
func SaveCache(path string, cache *Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling hub cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hub cache: %w", err)
	}
	return nil
}

// IsStale returns true if the cache is nil or older than maxAge.
func IsStale(cache *Cache, maxAge time.Duration) bool {
	if cache == nil || cache.UpdatedAt.IsZero() {
		return true
	}
	return time.Since(cache.UpdatedAt) > maxAge
}
