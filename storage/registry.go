package storage

import (
	"context"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/storage/cache"
	storagedriver "github.com/heavydata/dms/storage/driver"
)

// registry is the top-level implementation of dms.Namespace over a storage
// driver.
type registry struct {
	driver        storagedriver.StorageDriver
	blobStore     *blobStore
	documentCache cache.DocumentCache
}

// RegistryOption is the type used for functional options for NewRegistry.
type RegistryOption func(*registry) error

// WithDocumentCache causes document and schema reads to go through the given
// cache. Writes invalidate affected entries.
func WithDocumentCache(dc cache.DocumentCache) RegistryOption {
	return func(r *registry) error {
		r.documentCache = dc
		return nil
	}
}

// NewRegistry creates a registry namespace over the given driver.
func NewRegistry(ctx context.Context, driver storagedriver.StorageDriver, options ...RegistryOption) (dms.Namespace, error) {
	r := &registry{
		driver:    driver,
		blobStore: &blobStore{driver: driver},
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Database returns an instance of the database named name. The database is
// lazy: it may not exist in storage yet; its schema decides what it holds.
func (r *registry) Database(ctx context.Context, name string) (dms.Database, error) {
	if !dms.DatabaseNameRegexp.MatchString(name) {
		return nil, dms.ErrDatabaseNameInvalid{Name: name}
	}

	return &database{
		registry: r,
		name:     name,
	}, nil
}

// Databases returns the names of databases that have a schema installed.
func (r *registry) Databases(ctx context.Context) ([]string, error) {
	root, err := pathFor(databasesRootPathSpec{})
	if err != nil {
		return nil, err
	}

	children, err := r.driver.List(ctx, root)
	if err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, lastPathComponent(child))
	}
	return names, nil
}

func lastPathComponent(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
