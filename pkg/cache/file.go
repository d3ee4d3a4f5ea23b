package cache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileCache stores entries as files under a root directory, sharded by the
// key's stage prefix (graph/, layout/, chart/). Each file starts with a
// single header line carrying the expiry as unix nanoseconds, followed by
// the raw payload.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get retrieves a value. Expired or corrupt entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	nl := bytes.IndexByte(raw, '\n')
	if nl < 0 {
		_ = os.Remove(path)
		return nil, false, nil
	}
	expiresAt, err := strconv.ParseInt(string(raw[:nl]), 10, 64)
	if err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return raw[nl+1:], true, nil
}

// Set stores a value. A ttl of zero or less means the entry never expires.
// The write goes through a temp file so readers never observe a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintf(tmp, "%d\n", expiresAt); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path maps a key to its file. Keys are "stage:hash"; the stage becomes a
// subdirectory so graph, layout, and chart entries stay separated on disk.
func (c *FileCache) path(key string) string {
	stage, rest, ok := strings.Cut(key, ":")
	if !ok {
		stage, rest = "misc", key
	}
	return filepath.Join(c.dir, stage, Hash([]byte(rest)))
}

var _ Cache = (*FileCache)(nil)
