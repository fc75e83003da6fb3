package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores entries as files under a root directory, one subtree per
// key namespace ("graph", "artifact") so the CLI can inspect and clear them
// per stage. Within a namespace, entries are sharded by the first two hex
// characters of the key digest to keep directories small.
//
// Writes go through a temp file and rename. Concurrent mindflow invocations
// share ~/.cache/mindflow, and a reader must never observe a half-written
// entry.
type FileCache struct {
	root string
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

// fileEntry is the on-disk format. Expiry travels with the entry because the
// cache outlives the process that wrote it.
type fileEntry struct {
	// ExpiresAt is the expiry time in unix nanoseconds; zero means the
	// entry never expires.
	ExpiresAt int64 `json:"exp,omitempty"`

	Body []byte `json:"body"`
}

// Get implements Cache. Expired and undecodable entries are evicted and
// reported as misses; the pipeline recomputes them.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if entry.ExpiresAt != 0 && time.Now().UnixNano() > entry.ExpiresAt {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Body, true, nil
}

// Set implements Cache.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Body: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete implements Cache. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close implements Cache. The file cache holds no open handles.
func (c *FileCache) Close() error {
	return nil
}

// entryPath maps a key to <root>/<namespace>/<shard>/<digest>.json. The
// namespace is the prefix DefaultKeyer puts before the first colon;
// unprefixed keys land under "misc".
func (c *FileCache) entryPath(key string) string {
	ns := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 {
		ns = key[:i]
	}
	sum := Hash([]byte(key))
	return filepath.Join(c.root, ns, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
