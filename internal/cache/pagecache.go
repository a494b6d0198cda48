// Package cache keeps fetched listing pages on disk so repeat runs can
// revalidate instead of downloading the whole page again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the metadata stored next to a cached page body.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores pages as <key>.meta.json and <key>.body under Dir, where
// key is sha256 of the page URL. There is no eviction; see Purge.
type PageCache struct {
	Dir string
	// StrictPerms writes 0700 directories and 0600 files.
	StrictPerms bool
}

const (
	metaSuffix = ".meta.json"
	bodySuffix = ".body"
)

func (c *PageCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *PageCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, c.dirMode())
}

func key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(url string) string { return filepath.Join(c.Dir, key(url)+metaSuffix) }
func (c *PageCache) bodyPath(url string) string { return filepath.Join(c.Dir, key(url)+bodySuffix) }

// LoadMeta returns the stored metadata for url.
func (c *PageCache) LoadMeta(_ context.Context, url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(url))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the stored page body for url.
func (c *PageCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(url))
}

// Fresh reports whether url was saved less than maxAge ago. A non-positive
// maxAge never counts as fresh.
func (c *PageCache) Fresh(ctx context.Context, url string, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	e, err := c.LoadMeta(ctx, url)
	if err != nil {
		return false
	}
	return time.Since(e.SavedAt) < maxAge
}

// Save writes body then metadata; the metadata is renamed into place last so
// a reader never sees metadata without its body.
func (c *PageCache) Save(_ context.Context, e Entry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	if err := os.WriteFile(c.bodyPath(e.URL), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(e.URL) + ".tmp"
	if err := os.WriteFile(tmp, b, c.fileMode()); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(e.URL))
}
