// Package index maintains fast in-memory lookup structures mirroring
// persisted rows. Cached entries are derived, never authoritative: every
// mutation path writes storage first and then patches the cache, so a stale
// entry is at worst one Refresh away from correct.
package index

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Loader re-reads one record from storage by key.
type Loader[K ristretto.Key, V any] func(key K) (V, error)

// Index is a keyed cache for one entity type backed by ristretto. Admission
// is probabilistic, so a Lookup miss is never an error; callers fall back to
// the loader and re-populate.
type Index[K ristretto.Key, V any] struct {
	cache *ristretto.Cache[K, V]
	load  Loader[K, V]
}

// New creates an index bounded to roughly maxEntries records, each record
// costing one unit.
func New[K ristretto.Key, V any](maxEntries int64, load Loader[K, V]) (*Index[K, V], error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("index capacity must be positive")
	}
	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}
	return &Index[K, V]{cache: cache, load: load}, nil
}

// Lookup returns the cached record for key, if present.
func (i *Index[K, V]) Lookup(key K) (V, bool) {
	return i.cache.Get(key)
}

// Refresh re-reads one row from storage into the cache. If the row is gone
// the cached entry is dropped and the loader's error is returned.
func (i *Index[K, V]) Refresh(key K) error {
	value, err := i.load(key)
	if err != nil {
		i.cache.Del(key)
		return err
	}
	i.put(key, value)
	return nil
}

// Invalidate removes a record from the cache after a delete.
func (i *Index[K, V]) Invalidate(key K) {
	i.cache.Del(key)
	i.cache.Wait()
}

// Put stores an already-loaded record, e.g. right after an insert or during
// cold-start warming.
func (i *Index[K, V]) Put(key K, value V) {
	i.put(key, value)
}

// put flushes the write buffer so the entry is observable within the same
// logical operation.
func (i *Index[K, V]) put(key K, value V) {
	i.cache.Set(key, value, 1)
	i.cache.Wait()
}

// Close releases the cache. The index holds no persistent state.
func (i *Index[K, V]) Close() {
	i.cache.Close()
}
