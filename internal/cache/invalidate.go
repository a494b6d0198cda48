package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Clear removes every cached page, then recreates Dir empty.
func (c *PageCache) Clear() error {
	if c == nil || strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return err
	}
	return c.ensureDir()
}

// Purge deletes pages saved more than maxAge ago and returns how many were
// removed. Metadata that is unreadable, or that does not belong to the file
// it is stored in, is left alone. A missing Dir holds nothing to purge.
func (c *PageCache) Purge(ctx context.Context, maxAge time.Duration) (int, error) {
	if c == nil || c.Dir == "" || maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(c.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), metaSuffix) {
			continue
		}
		path := filepath.Join(c.Dir, de.Name())
		e, ok := readEntry(path)
		if !ok || c.metaPath(e.URL) != path || !e.SavedAt.Before(cutoff) {
			continue
		}
		if err := c.remove(e.URL); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func readEntry(path string) (Entry, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

// remove drops both files of url's page. Missing files are not an error.
func (c *PageCache) remove(url string) error {
	for _, p := range []string{c.metaPath(url), c.bodyPath(url)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
