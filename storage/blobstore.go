package storage

import (
	"context"

	"github.com/opencontainers/go-digest"

	storagedriver "github.com/heavydata/dms/storage/driver"
)

// blobStore implements a content-addressed store for the payloads of bytes
// fields. Content is keyed by its sha256 digest, so identical payloads
// referenced from different documents share one stored copy.
type blobStore struct {
	driver storagedriver.StorageDriver
}

// ErrBlobUnknown is returned when a referenced blob is not in the store.
type ErrBlobUnknown struct {
	Digest digest.Digest
}

func (err ErrBlobUnknown) Error() string {
	return "unknown blob: " + err.Digest.String()
}

// Get retrieves the blob content for the given digest.
func (bs *blobStore) Get(ctx context.Context, dgst digest.Digest) ([]byte, error) {
	bp, err := pathFor(blobDataPathSpec{digest: dgst})
	if err != nil {
		return nil, err
	}

	content, err := bs.driver.GetContent(ctx, bp)
	if err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return nil, ErrBlobUnknown{Digest: dgst}
		}
		return nil, err
	}
	return content, nil
}

// Put stores content and returns its digest. Writing content that is already
// stored is a no-op beyond the existence check.
func (bs *blobStore) Put(ctx context.Context, content []byte) (digest.Digest, error) {
	dgst := digest.FromBytes(content)

	bp, err := pathFor(blobDataPathSpec{digest: dgst})
	if err != nil {
		return "", err
	}

	if _, err := bs.driver.Stat(ctx, bp); err == nil {
		return dgst, nil // content already stored
	} else if _, ok := err.(storagedriver.PathNotFoundError); !ok {
		return "", err
	}

	if err := bs.driver.PutContent(ctx, bp, content); err != nil {
		return "", err
	}
	return dgst, nil
}
