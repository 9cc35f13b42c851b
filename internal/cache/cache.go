// Package cache stores motion-analysis artifacts keyed by content hashes,
// so re-running a clip with unchanged analysis inputs skips the expensive
// detection pass.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// HashObject canonicalizes a value as JSON with sorted keys and returns
// the hex SHA-256 of the encoding. Map keys are sorted by encoding/json,
// so equal values always hash equal.
func HashObject(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hashing cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Dir is an on-disk cache directory for one input file.
type Dir struct {
	path string
}

// Open ensures the cache directory exists and returns it.
func Open(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the cache directory path.
func (d *Dir) Path() string { return d.path }

// TransformsPath returns the cached detection-transforms path for a key.
func (d *Dir) TransformsPath(key string) string {
	return filepath.Join(d.path, key+".transforms.trf")
}

// GlobalMotionsPath returns the cached global-motions path for a key.
func (d *Dir) GlobalMotionsPath(key string) string {
	return filepath.Join(d.path, key+".global_motions.trf")
}

// Has reports whether a regular, non-empty file exists at path.
func (d *Dir) Has(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Commit moves a finished artifact into the cache atomically. Partial
// writes never become visible under the final name.
func (d *Dir) Commit(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// TempPath returns a scratch path next to finalPath, on the same
// filesystem so Commit's rename stays atomic.
func (d *Dir) TempPath(finalPath string) string {
	return finalPath + fmt.Sprintf(".tmp.%d", os.Getpid())
}
