package storage

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/internal/dcontext"
	"github.com/heavydata/dms/schema"
	"github.com/heavydata/dms/storage/cache"
	storagedriver "github.com/heavydata/dms/storage/driver"
)

type database struct {
	registry *registry
	name     string
}

var _ dms.Database = &database{}

func (db *database) Name() string {
	return db.name
}

// Schema returns the installed schema, going through the document cache when
// one is configured.
func (db *database) Schema(ctx context.Context) (schema.Schema, error) {
	payload, err := db.schemaPayload(ctx)
	if err != nil {
		return nil, err
	}
	return schema.Parse(payload)
}

func (db *database) schemaPayload(ctx context.Context) ([]byte, error) {
	key := cache.Key{Database: db.name}

	if db.registry.documentCache != nil {
		payload, err := db.registry.documentCache.Get(ctx, key)
		if err == nil {
			return payload, nil
		}
		if err != cache.ErrNotFound {
			dcontext.GetLogger(ctx).Errorf("error reaching schema cache: %v", err)
		}
	}

	sp, err := pathFor(schemaPathSpec{database: db.name})
	if err != nil {
		return nil, err
	}

	payload, err := db.registry.driver.GetContent(ctx, sp)
	if err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return nil, dms.ErrSchemaUnknown
		}
		return nil, err
	}

	if db.registry.documentCache != nil {
		if err := db.registry.documentCache.Set(ctx, key, payload); err != nil {
			dcontext.GetLogger(ctx).Errorf("error priming schema cache: %v", err)
		}
	}

	return payload, nil
}

// SetSchema installs a schema. An existing schema is only replaced when force
// is set.
func (db *database) SetSchema(ctx context.Context, s schema.Schema, force bool) error {
	if err := s.Validate(); err != nil {
		return err
	}

	sp, err := pathFor(schemaPathSpec{database: db.name})
	if err != nil {
		return err
	}

	if !force {
		if _, err := db.registry.driver.Stat(ctx, sp); err == nil {
			return dms.ErrSchemaConflict{Database: db.name}
		} else if _, ok := err.(storagedriver.PathNotFoundError); !ok {
			return err
		}
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := db.registry.driver.PutContent(ctx, sp, payload); err != nil {
		return err
	}

	if db.registry.documentCache != nil {
		if err := db.registry.documentCache.Invalidate(ctx, cache.Key{Database: db.name}); err != nil {
			dcontext.GetLogger(ctx).Errorf("error invalidating schema cache: %v", err)
		}
	}

	return nil
}

// Collection returns the named collection. The collection must be declared by
// the installed schema.
func (db *database) Collection(ctx context.Context, name string) (dms.Collection, error) {
	s, err := db.Schema(ctx)
	if err != nil {
		return nil, err
	}

	if !s.Has(name) {
		return nil, dms.ErrCollectionUnknown{Database: db.name, Name: name}
	}

	return &collection{
		database: db,
		schema:   s,
		name:     name,
	}, nil
}

// Collections returns the sorted collection names declared by the schema.
func (db *database) Collections(ctx context.Context) ([]string, error) {
	s, err := db.Schema(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
