package dms

import (
	"context"
	"regexp"

	"github.com/heavydata/dms/schema"
)

// DatabaseNameRegexp matches valid database names. Database names are host
// and path friendly so they can appear in URLs and storage paths verbatim.
var DatabaseNameRegexp = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)

// Document is the in-memory representation of a stored object. Values follow
// encoding/json conventions: numbers are float64, arrays are []interface{}
// and nested objects are map[string]interface{}.
type Document map[string]interface{}

// Meta identifies a stored document. Type carries the collection name, which
// is how clients address the document family.
type Meta struct {
	ID   ObjectID `json:"id"`
	Type string   `json:"type"`
}

// GetOptions control how a document is rendered on read.
type GetOptions struct {
	// Path descends along a dot path before rendering. The path must
	// terminate on an object, possibly through link hops.
	Path string

	// MaxLevel limits link resolution depth. Negative means unlimited. Link
	// fields past the level budget are omitted from the result, so zero
	// renders only the plain fields of the target object.
	MaxLevel int

	// Meta includes a _meta subdocument carrying the id and type of every
	// rendered object.
	Meta bool

	// Tracking renders link fields created from relative references as the
	// original reference string instead of resolving them.
	Tracking bool
}

// UnlimitedLevel disables link resolution depth limiting in GetOptions.
const UnlimitedLevel = -1

// Namespace represents a set of databases addressable by name. The returned
// databases share the namespace's backing storage.
type Namespace interface {
	// Database returns the named database, which may not exist yet; its
	// schema defines which collections are available.
	Database(ctx context.Context, name string) (Database, error)

	// Databases returns the names of all databases known to the namespace.
	Databases(ctx context.Context) ([]string, error)
}

// Database holds a schema and the document collections the schema declares.
type Database interface {
	// Name returns the database name.
	Name() string

	// Schema returns the installed schema or ErrSchemaUnknown.
	Schema(ctx context.Context) (schema.Schema, error)

	// SetSchema installs a schema. An already installed schema is only
	// replaced when force is set, otherwise ErrSchemaConflict is returned.
	SetSchema(ctx context.Context, s schema.Schema, force bool) error

	// Collection returns the named collection, which must be declared by the
	// installed schema.
	Collection(ctx context.Context, name string) (Collection, error)

	// Collections returns the collection names declared by the schema.
	Collections(ctx context.Context) ([]string, error)
}

// Collection provides access to the documents of one schema collection.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Create validates doc against the schema and stores it, returning the
	// new document id. Link fields accept raw ids, inline documents (created
	// recursively in the target collection) and relative references into the
	// same request.
	Create(ctx context.Context, doc Document) (ObjectID, error)

	// Get renders the identified document according to opts.
	Get(ctx context.Context, id ObjectID, opts GetOptions) (Document, error)

	// Update replaces the given fields on a stored document. Values are
	// validated the same way Create validates them; link fields take raw ids
	// only.
	Update(ctx context.Context, id ObjectID, fields Document) error

	// Attribute resolves a dot path against the identified document and
	// returns the stored representation of the non-link attribute it
	// terminates on.
	Attribute(ctx context.Context, id ObjectID, path string) (interface{}, error)

	// List returns the ids of all documents in the collection.
	List(ctx context.Context) ([]ObjectID, error)

	// Exists reports whether the identified document is stored.
	Exists(ctx context.Context, id ObjectID) (bool, error)
}
