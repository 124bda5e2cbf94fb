// Package cache is a small JSON file cache used to remember per-tile
// decisions between runs. Entries carry a checksum so a corrupted or
// hand-edited file degrades to a miss instead of a bad hit.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type FileCache[T any] struct {
	dir string
}

func New[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

// Key derives a stable cache key from arbitrary parameters, typically the
// tile path plus its size and modification time.
func Key(params ...interface{}) string {
	var keyData string
	for _, param := range params {
		keyData += fmt.Sprintf("%v_", param)
	}
	h := sha1.Sum([]byte(keyData))
	return hex.EncodeToString(h[:])
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T

	data, err := os.ReadFile(filepath.Join(fc.dir, key+".json"))
	if err != nil {
		return zero, false
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return zero, false
	}
	if e.Checksum != checksum(e.Data) {
		return zero, false
	}
	return e.Data, true
}

func (fc *FileCache[T]) Put(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %v", err)
	}

	e := entry[T]{Data: data, CreatedAt: time.Now(), Checksum: checksum(data)}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling cache entry: %v", err)
	}

	final := filepath.Join(fc.dir, key+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %v", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing cache entry: %v", err)
	}
	return nil
}

func checksum(v interface{}) string {
	raw, _ := json.Marshal(v)
	h := sha1.Sum(raw)
	return hex.EncodeToString(h[:])
}
