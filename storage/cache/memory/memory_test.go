package memory

import (
	"context"
	"testing"

	"github.com/heavydata/dms/storage/cache/cachecheck"
)

// TestInMemoryDocumentCache checks the in memory implementation is working
// correctly.
func TestInMemoryDocumentCache(t *testing.T) {
	opts := NewCacheOptions(UnlimitedSize)
	cache, err := NewDocumentCacheProvider(context.Background(), opts)
	if err != nil {
		t.Fatalf("init cache: %v", err)
	}
	cachecheck.CheckDocumentCache(t, cache)
}
