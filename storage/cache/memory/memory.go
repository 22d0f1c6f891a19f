// Package memory provides an in-process DocumentCache backed by an ARC LRU.
package memory

import (
	"context"
	"math"

	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/heavydata/dms/storage/cache"
)

// init registers the inmemory cache provider.
func init() {
	cache.Register("inmemory", NewDocumentCacheProvider)
}

const (
	// DefaultSize is the default cache size to use if no size is explicitly
	// configured.
	DefaultSize = 10000

	// UnlimitedSize indicates the cache size should not be limited.
	UnlimitedSize = math.MaxInt
)

// Memory configures the inmemory cache.
type Memory struct {
	Size int `yaml:"size,omitempty"`
}

type inMemoryDocumentCache struct {
	lru *arc.ARCCache[cache.Key, []byte]
}

// NewDocumentCacheProvider returns a new ARC-backed document cache. The
// "size" option bounds the number of cached payloads; zero or negative means
// unlimited.
func NewDocumentCacheProvider(ctx context.Context, options map[string]interface{}) (cache.DocumentCache, error) {
	var c Memory
	if err := mapstructure.Decode(options["params"], &c); err != nil {
		return nil, err
	}

	size := c.Size
	if size <= 0 {
		size = UnlimitedSize
	}

	lruCache, err := arc.NewARC[cache.Key, []byte](size)
	if err != nil {
		// NewARC can only fail if size is <= 0, so this is unreachable
		return nil, err
	}
	return cache.NewInstrumented(&inMemoryDocumentCache{
		lru: lruCache,
	}), nil
}

// NewCacheOptions returns new memory cache options.
func NewCacheOptions(size int) map[string]interface{} {
	return map[string]interface{}{
		"params": map[interface{}]interface{}{
			"size": size,
		},
	}
}

func (imdc *inMemoryDocumentCache) Name() string {
	return "inmemory"
}

func (imdc *inMemoryDocumentCache) Get(ctx context.Context, key cache.Key) ([]byte, error) {
	payload, ok := imdc.lru.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return payload, nil
}

func (imdc *inMemoryDocumentCache) Set(ctx context.Context, key cache.Key, payload []byte) error {
	p := make([]byte, len(payload))
	copy(p, payload)
	imdc.lru.Add(key, p)
	return nil
}

func (imdc *inMemoryDocumentCache) Invalidate(ctx context.Context, key cache.Key) error {
	imdc.lru.Remove(key)
	return nil
}
