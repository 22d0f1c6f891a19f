// Package cache provides facilities to speed up access to the storage
// backend. Document payloads are cached in their serialized form, keyed by
// database, collection and object id. Schema payloads are cached per
// database. The cache is strictly an optimization, storage remains the
// source of truth and entries are invalidated on every write.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/utils"
)

var (
	// ErrNotFound is returned when a cached item is not found.
	ErrNotFound = fmt.Errorf("not found")

	cacheDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: utils.PrometheusNamespace,
		Subsystem: "cache",
		Name:      "duration_seconds",
		Help:      "Duration of cache operations in seconds.",
	}, []string{"op", "driver"})
)

func init() {
	prometheus.MustRegister(cacheDuration)
}

// Key addresses a cached payload. A key with an empty Collection and ID
// addresses the database schema; otherwise all three components are required
// and address a stored document.
type Key struct {
	Database   string
	Collection string
	ID         dms.ObjectID
}

func (k Key) schema() bool {
	return k.Collection == "" && k.ID == ""
}

// DocumentCache caches serialized document and schema payloads, avoiding
// round trips to backend storage on read-heavy link resolution.
type DocumentCache interface {
	// Name returns the human-readable "name" of the cache driver.
	Name() string

	// Get returns the cached payload for key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores the payload for key, replacing any previous entry.
	Set(ctx context.Context, key Key, payload []byte) error

	// Invalidate removes the entry for key, if present. Invalidating an
	// absent key is not an error.
	Invalidate(ctx context.Context, key Key) error
}

// base implements common checks between cache implementations. Note that
// these are not full checks of input, since that should be done by the
// caller.
type base struct {
	DocumentCache
}

// NewInstrumented wraps a DocumentCache with key validation and prometheus
// duration tracking.
func NewInstrumented(dc DocumentCache) DocumentCache {
	return &base{dc}
}

func (b *base) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	defer utils.PrometheusObserveDuration(time.Now(), cacheDuration, "get", b.Name())
	return b.DocumentCache.Get(ctx, key)
}

func (b *base) Set(ctx context.Context, key Key, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	defer utils.PrometheusObserveDuration(time.Now(), cacheDuration, "set", b.Name())
	return b.DocumentCache.Set(ctx, key, payload)
}

func (b *base) Invalidate(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}

	defer utils.PrometheusObserveDuration(time.Now(), cacheDuration, "invalidate", b.Name())
	return b.DocumentCache.Invalidate(ctx, key)
}

func validateKey(key Key) error {
	if key.Database == "" {
		return fmt.Errorf("cache: empty database in key")
	}

	if key.schema() {
		return nil
	}

	if key.Collection == "" {
		return fmt.Errorf("cache: empty collection in key")
	}
	if err := key.ID.Validate(); err != nil {
		return fmt.Errorf("cache: %v", err)
	}
	return nil
}
