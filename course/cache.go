package course

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/where"
)

// normalizedTitle returns a lowercased, trimmed string for consistent
// comparison and cache keying.
func normalizedTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// cacheData defines the structured format for persisting cached catalog
// records to disk.
type cacheData[K comparable, T any] struct {
	Courses map[K]T `json:"courses"`
}

// cacher provides a generic, thread-safe wrapper for high-level caching
// operations.
type cacher[K comparable, T any] struct {
	internal   *gache.Cache[*cacheData[K, T]]
	keyWrapper func(K) K
	mu         sync.RWMutex
}

// Get retrieves a value from the cache associated with the specified key.
func (c *cacher[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	if course, ok := data.Courses[c.keyWrapper(key)]; ok {
		return mo.Some(course)
	}

	return mo.None[T]()
}

// Set persists a key-value pair to the cache.
func (c *cacher[K, T]) Set(key K, t T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if !expired && data != nil {
		data.Courses[c.keyWrapper(key)] = t
		return c.internal.Set(data)
	}

	internal := &cacheData[K, T]{Courses: make(map[K]T)}
	internal.Courses[c.keyWrapper(key)] = t
	return c.internal.Set(internal)
}

// Delete removes the entry associated with the specified key from the cache.
func (c *cacher[K, T]) Delete(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if !expired && data != nil {
		delete(data.Courses, c.keyWrapper(key))
		return c.internal.Set(data)
	}

	return nil
}

// relationCacher persists course title-to-ID mappings so repeated lookups of
// the same title skip the catalog search.
var relationCacher = &cacher[string, string]{
	internal: gache.New[*cacheData[string, string]](
		&gache.Options{
			Path:       where.CourseBinds(),
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: normalizedTitle,
}

// idCacher provides local persistence for full course metadata lookups.
var idCacher = &cacher[string, *Course]{
	internal: gache.New[*cacheData[string, *Course]](
		&gache.Options{
			Path:       filepath.Join(where.Cache(), "course_id_cache.json"),
			Lifetime:   time.Hour * 24 * 2,
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: func(id string) string { return id },
}

// failCacher is short-term persistence for failed searches to mitigate
// redundant API pressure.
var failCacher = &cacher[string, bool]{
	internal: gache.New[*cacheData[string, bool]](
		&gache.Options{
			Path:       filepath.Join(where.Cache(), "course_fail_cache.json"),
			Lifetime:   time.Minute,
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: normalizedTitle,
}
