// Package cachecheck provides a behavioral suite run against every
// DocumentCache implementation.
package cachecheck

import (
	"bytes"
	"context"
	"testing"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/storage/cache"
)

// CheckDocumentCache takes a document cache implementation through a common
// set of operations. If adding new checks, please add them here so new
// implementations get the benefit. This should be used for unit tests.
func CheckDocumentCache(t *testing.T, dc cache.DocumentCache) {
	ctx := context.Background()

	checkKeyValidation(t, ctx, dc)
	checkGetSet(t, ctx, dc)
	checkOverwrite(t, ctx, dc)
	checkInvalidate(t, ctx, dc)
	checkSchemaKey(t, ctx, dc)
}

func checkKeyValidation(t *testing.T, ctx context.Context, dc cache.DocumentCache) {
	badKeys := []cache.Key{
		{},
		{Database: "", Collection: "beams", ID: dms.NewObjectID()},
		{Database: "production", Collection: "beams"},
		{Database: "production", ID: dms.NewObjectID()},
		{Database: "production", Collection: "beams", ID: "not-an-id"},
	}

	for _, key := range badKeys {
		if _, err := dc.Get(ctx, key); err == nil {
			t.Fatalf("expected error getting with invalid key %+v", key)
		}
		if err := dc.Set(ctx, key, []byte("{}")); err == nil {
			t.Fatalf("expected error setting with invalid key %+v", key)
		}
		if err := dc.Invalidate(ctx, key); err == nil {
			t.Fatalf("expected error invalidating with invalid key %+v", key)
		}
	}
}

func checkGetSet(t *testing.T, ctx context.Context, dc cache.DocumentCache) {
	key := cache.Key{Database: "production", Collection: "beams", ID: dms.NewObjectID()}

	if _, err := dc.Get(ctx, key); err != cache.ErrNotFound {
		t.Fatalf("expected unknown key error, got %v", err)
	}

	payload := []byte(`{"length":{"value":2.5,"unit":"m"}}`)
	if err := dc.Set(ctx, key, payload); err != nil {
		t.Fatalf("error setting payload: %v", err)
	}

	cached, err := dc.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting payload: %v", err)
	}
	if !bytes.Equal(cached, payload) {
		t.Fatalf("unexpected payload: %q != %q", cached, payload)
	}

	// another id in the same collection must miss.
	other := cache.Key{Database: key.Database, Collection: key.Collection, ID: dms.NewObjectID()}
	if _, err := dc.Get(ctx, other); err != cache.ErrNotFound {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func checkOverwrite(t *testing.T, ctx context.Context, dc cache.DocumentCache) {
	key := cache.Key{Database: "production", Collection: "beams", ID: dms.NewObjectID()}

	if err := dc.Set(ctx, key, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("error setting payload: %v", err)
	}

	payload := []byte(`{"v":2}`)
	if err := dc.Set(ctx, key, payload); err != nil {
		t.Fatalf("error overwriting payload: %v", err)
	}

	cached, err := dc.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting payload: %v", err)
	}
	if !bytes.Equal(cached, payload) {
		t.Fatalf("unexpected payload: %q != %q", cached, payload)
	}
}

func checkInvalidate(t *testing.T, ctx context.Context, dc cache.DocumentCache) {
	key := cache.Key{Database: "production", Collection: "beams", ID: dms.NewObjectID()}

	if err := dc.Set(ctx, key, []byte(`{}`)); err != nil {
		t.Fatalf("error setting payload: %v", err)
	}
	if err := dc.Invalidate(ctx, key); err != nil {
		t.Fatalf("error invalidating key: %v", err)
	}
	if _, err := dc.Get(ctx, key); err != cache.ErrNotFound {
		t.Fatalf("expected unknown key error after invalidation, got %v", err)
	}

	// invalidating an absent key is not an error.
	if err := dc.Invalidate(ctx, key); err != nil {
		t.Fatalf("error invalidating absent key: %v", err)
	}
}

func checkSchemaKey(t *testing.T, ctx context.Context, dc cache.DocumentCache) {
	key := cache.Key{Database: "production"}

	payload := []byte(`{"beams":{"length":{"dtype":"f","unit":"m"}}}`)
	if err := dc.Set(ctx, key, payload); err != nil {
		t.Fatalf("error setting schema payload: %v", err)
	}

	cached, err := dc.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting schema payload: %v", err)
	}
	if !bytes.Equal(cached, payload) {
		t.Fatalf("unexpected schema payload: %q != %q", cached, payload)
	}

	// schema keys are namespaced away from document keys.
	if _, err := dc.Get(ctx, cache.Key{Database: "staging"}); err != cache.ErrNotFound {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
