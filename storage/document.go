package storage

import (
	"context"
	"encoding/json"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/internal/dcontext"
	"github.com/heavydata/dms/storage/cache"
	storagedriver "github.com/heavydata/dms/storage/driver"
)

// storedDocument is the persisted form of one object. Fields hold values in
// schema units, with link fields holding raw object ids (a string, or a
// slice of strings for sequence links). Tracking records, per link field slot
// ("cs", "rveStates[1]"), the relative reference the slot was created from.
type storedDocument struct {
	Fields   map[string]interface{} `json:"fields"`
	Tracking map[string]string      `json:"tracking,omitempty"`
}

// getStoredDocument fetches and decodes a document, going through the
// registry's document cache when configured. Cache failures fall back to
// storage.
func (r *registry) getStoredDocument(ctx context.Context, dbName, collName string, id dms.ObjectID) (*storedDocument, error) {
	key := cache.Key{Database: dbName, Collection: collName, ID: id}

	if r.documentCache != nil {
		if payload, err := r.documentCache.Get(ctx, key); err == nil {
			return decodeStoredDocument(payload)
		} else if err != cache.ErrNotFound {
			dcontext.GetLogger(ctx).Errorf("error reaching document cache: %v", err)
		}
	}

	dp, err := pathFor(objectDataPathSpec{database: dbName, collection: collName, id: id})
	if err != nil {
		return nil, err
	}

	payload, err := r.driver.GetContent(ctx, dp)
	if err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return nil, dms.ErrObjectUnknown{Collection: collName, ID: id}
		}
		return nil, err
	}

	if r.documentCache != nil {
		if err := r.documentCache.Set(ctx, key, payload); err != nil {
			dcontext.GetLogger(ctx).Errorf("error priming document cache: %v", err)
		}
	}

	return decodeStoredDocument(payload)
}

// putStoredDocument encodes and persists a document and invalidates its cache
// entry.
func (r *registry) putStoredDocument(ctx context.Context, dbName, collName string, id dms.ObjectID, doc *storedDocument) error {
	dp, err := pathFor(objectDataPathSpec{database: dbName, collection: collName, id: id})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := r.driver.PutContent(ctx, dp, payload); err != nil {
		return err
	}

	if r.documentCache != nil {
		key := cache.Key{Database: dbName, Collection: collName, ID: id}
		if err := r.documentCache.Invalidate(ctx, key); err != nil {
			dcontext.GetLogger(ctx).Errorf("error invalidating document cache: %v", err)
		}
	}

	return nil
}

func decodeStoredDocument(payload []byte) (*storedDocument, error) {
	var doc storedDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	if doc.Fields == nil {
		doc.Fields = map[string]interface{}{}
	}
	return &doc, nil
}
