package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"regionck/internal/diag"
)

// Current schema version - increment when ResultPayload format changes
const resultCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// HashBytes возвращает ключ кэша для содержимого файла модуля.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// ResultCache хранит диагностики анализа по хэшу содержимого .lirb файла.
// Диагностики ссылаются на FileID внутри самого модуля, поэтому при
// одинаковом содержимом они валидны без пересчёта.
// Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// ResultPayload stores the cached outcome of checking one module.
type ResultPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Module  string
	Skipped bool // feature gate was off for this module
	Diags   []diag.Diagnostic
}

// OpenResultCache initializes and returns a result cache. An empty dir
// selects the standard location under XDG_CACHE_HOME.
func OpenResultCache(app, dir string) (*ResultCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

func (c *ResultCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "results".
	return filepath.Join(c.dir, "results", hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *ResultCache) Put(key Digest, payload *ResultPayload) error {
	if c == nil {
		return nil
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
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the cache. A schema mismatch
// counts as a miss.
func (c *ResultCache) Get(key Digest, out *ResultPayload) (bool, error) {
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
	defer func() {
		_ = f.Close()
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != resultCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим целиком
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
