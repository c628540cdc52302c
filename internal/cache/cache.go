package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Digest is a SHA-256 of file contents.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// DiskCache remembers, per pass and file, the digest of the output the pass
// produced last time. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Entry is the msgpack payload stored per (pass, path).
type Entry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Pass   string
	Path   string
	Output Digest
	Stored time.Time
}

// Open initializes a disk cache under os.UserCacheDir()/<app>.
func Open(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir opens a cache rooted at dir.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(pass, path string) string {
	key := sha256.Sum256([]byte(pass + "\x00" + path))
	// все проходы в одном каталоге, DropAll чистит его целиком
	return filepath.Join(c.dir, "passes", hex.EncodeToString(key[:])+".mp")
}

// Put records that pass produced output for path.
func (c *DiskCache) Put(pass, path string, output Digest) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(pass, path)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	// после Rename файла уже нет, ошибка Remove тогда ожидаема
	defer func() { _ = os.Remove(tmp) }()

	entry := Entry{Schema: schemaVersion, Pass: pass, Path: path, Output: output, Stored: time.Now().UTC()}
	if err = msgpack.NewEncoder(f).Encode(&entry); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get returns the stored entry for (pass, path). Entries written with
// another schema are treated as missing.
func (c *DiskCache) Get(pass, path string) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from a hash inside the cache dir
	data, err := os.ReadFile(c.pathFor(pass, path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if entry.Schema != schemaVersion || entry.Pass != pass || entry.Path != path {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Fresh reports whether current equals the output digest stored for
// (pass, path), i.e. the file is already in the shape the pass produces.
func (c *DiskCache) Fresh(pass, path string, current Digest) (bool, error) {
	entry, ok, err := c.Get(pass, path)
	if err != nil || !ok {
		return false, err
	}
	return entry.Output == current, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}
