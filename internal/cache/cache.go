// Package cache provides localized filesystem-based caching for transient
// platform responses, plus startup garbage collection of expired entries.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/where"
)

const TTL = 7 * 24 * time.Hour

// GenerateKey generates a deterministic SHA-256 hash from a resource and
// scope pair for use as a cache identifier.
func GenerateKey(resource, scope string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(resource, " ", "")) + scope
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read attempts to retrieve and deserialize a cached object if it exists and
// has not exceeded its TTL.
func Read(key string, target interface{}) bool {
	path := filepath.Join(where.Cache(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	return decoder.Decode(target) == nil
}

// Write persists a serializable object to the cache using an atomic file
// swap to ensure data integrity.
func Write(key string, data interface{}) error {
	path := filepath.Join(where.Cache(), key)
	tmpPath := path + ".tmp"

	f, err := filesystem.API().Create(tmpPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(data); err != nil {
		f.Close()
		return err
	}
	f.Close()

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage initializes an asynchronous background task that prunes
// expired cache entries, including stale transcript and catalog caches.
func CollectGarbage() {
	go func() {
		dir := where.Cache()
		entries, err := filesystem.API().ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if time.Since(entry.ModTime()) > TTL {
				_ = filesystem.API().Remove(filepath.Join(dir, entry.Name()))
			}
		}
	}()
}
