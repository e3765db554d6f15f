// Package cache keeps analysis summaries on disk, keyed by the content of
// the artifacts they were computed from.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"
)

// Current schema version - increment when the envelope or any cached
// payload changes shape.
const schemaVersion uint16 = 1

// Digest is a BLAKE3-256 content key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// Key hashes parts into a digest. Each part is length-prefixed so that
// moving bytes between parts changes the key.
func Key(parts ...[]byte) Digest {
	h := blake3.New(32, nil)
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

type envelope struct {
	Schema  uint16
	Payload msgpack.RawMessage
}

// DiskCache stores msgpack payloads compressed with zstd, one file per key.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a disk cache under the user's cache directory
// ($XDG_CACHE_HOME or ~/.cache).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes a disk cache rooted at dir.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
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

func (c *DiskCache) pathFor(key Digest) string {
	// подкаталог "runs", чтобы было проще чистить руками
	return filepath.Join(c.dir, "runs", key.String()+".mp.zst")
}

// Put serializes v and writes it under key, replacing any previous entry.
func (c *DiskCache) Put(key Digest, v any) error {
	if c == nil {
		return nil
	}
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(envelope{Schema: schemaVersion, Payload: payload}); err != nil {
		zw.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads the entry for key into out. Entries written by another schema
// version are reported as misses.
func (c *DiskCache) Get(key Digest, out any) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return false, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer zr.Close()

	var env envelope
	if err := msgpack.NewDecoder(zr).Decode(&env); err != nil {
		return false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	if env.Schema != schemaVersion {
		return false, nil
	}
	if err := msgpack.Unmarshal(env.Payload, out); err != nil {
		return false, fmt.Errorf("decode cache payload %s: %w", key, err)
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
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
	return os.MkdirAll(c.dir, 0o755)
}
