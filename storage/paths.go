package storage

import (
	"fmt"
	"path"

	"github.com/opencontainers/go-digest"

	"github.com/heavydata/dms"
)

const (
	storagePathVersion = "v1"
	storagePathRoot    = "/dms/"
)

// pathFor maps paths based on "object names" and their ids. The "object
// names" mapped by are internal to the storage system.
//
// The path layout in the storage backend is roughly as follows:
//
//	<root>/v1
//	├── databases
//	│   └── <database>
//	│       ├── schema
//	│       └── collections
//	│           └── <collection>
//	│               └── objects
//	│                   └── <id>
//	│                       └── data
//	└── blobs
//	    └── <algorithm>
//	        └── <first two hex bytes of digest>
//	            └── <hex digest>
//	                └── data
//
// Document payloads live under their collection, keyed by object id. Blob
// contents for bytes fields are stored content-addressed and shared between
// documents. Changing any path spec changes the on-disk layout, so treat the
// layout as a wire format.
func pathFor(spec pathSpec) (string, error) {
	rootPrefix := []string{storagePathRoot, storagePathVersion}

	switch v := spec.(type) {
	case databasesRootPathSpec:
		return path.Join(append(rootPrefix, "databases")...), nil
	case schemaPathSpec:
		return path.Join(append(rootPrefix, "databases", v.database, "schema")...), nil
	case objectsRootPathSpec:
		return path.Join(append(rootPrefix, "databases", v.database, "collections", v.collection, "objects")...), nil
	case objectDataPathSpec:
		root, err := pathFor(objectsRootPathSpec{database: v.database, collection: v.collection})
		if err != nil {
			return "", err
		}
		return path.Join(root, v.id.String(), "data"), nil
	case blobDataPathSpec:
		components, err := digestPathComponents(v.digest)
		if err != nil {
			return "", err
		}
		return path.Join(append(append(rootPrefix, "blobs"), append(components, "data")...)...), nil
	default:
		return "", fmt.Errorf("unknown path spec: %#v", v)
	}
}

// pathSpec is a type to mark structs as path specs. There is no
// implementation because we'd like to keep the specs and the mappers
// decoupled.
type pathSpec interface {
	pathSpec()
}

// databasesRootPathSpec describes the directory under which all databases
// reside.
type databasesRootPathSpec struct{}

func (databasesRootPathSpec) pathSpec() {}

// schemaPathSpec describes the schema document of a database.
type schemaPathSpec struct {
	database string
}

func (schemaPathSpec) pathSpec() {}

// objectsRootPathSpec describes the directory holding a collection's
// documents.
type objectsRootPathSpec struct {
	database   string
	collection string
}

func (objectsRootPathSpec) pathSpec() {}

// objectDataPathSpec describes one document's payload.
type objectDataPathSpec struct {
	database   string
	collection string
	id         dms.ObjectID
}

func (objectDataPathSpec) pathSpec() {}

// blobDataPathSpec contains the path for the blob data of a bytes field.
type blobDataPathSpec struct {
	digest digest.Digest
}

func (blobDataPathSpec) pathSpec() {}

// digestPathComponents provides a consistent path breakdown for a given
// digest. The algorithm selects the directory, followed by a two-byte prefix
// to avoid unwieldy directory fanout, followed by the full hex portion.
func digestPathComponents(dgst digest.Digest) ([]string, error) {
	if err := dgst.Validate(); err != nil {
		return nil, err
	}

	algorithm := string(dgst.Algorithm())
	hex := dgst.Hex()

	return []string{algorithm, hex[:2], hex}, nil
}
