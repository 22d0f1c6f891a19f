package dms

import (
	"errors"
	"fmt"
)

// ErrSchemaUnknown is returned when a database has no schema installed.
var ErrSchemaUnknown = errors.New("schema not installed")

// ErrUnsupported is returned when an operation is not supported by the
// backing implementation.
var ErrUnsupported = errors.New("operation unsupported")

// ErrDatabaseUnknown is returned if a database is not known to the namespace.
type ErrDatabaseUnknown struct {
	Name string
}

func (err ErrDatabaseUnknown) Error() string {
	return fmt.Sprintf("database unknown: %s", err.Name)
}

// ErrDatabaseNameInvalid is returned when a database name does not match
// DatabaseNameRegexp.
type ErrDatabaseNameInvalid struct {
	Name string
}

func (err ErrDatabaseNameInvalid) Error() string {
	return fmt.Sprintf("database name invalid: %s", err.Name)
}

// ErrSchemaConflict is returned when installing a schema over an existing one
// without force.
type ErrSchemaConflict struct {
	Database string
}

func (err ErrSchemaConflict) Error() string {
	return fmt.Sprintf("database %s already has a schema installed", err.Database)
}

// ErrCollectionUnknown is returned when a collection is not declared by the
// database schema.
type ErrCollectionUnknown struct {
	Database string
	Name     string
}

func (err ErrCollectionUnknown) Error() string {
	return fmt.Sprintf("collection unknown to database %s: %s", err.Database, err.Name)
}

// ErrObjectUnknown is returned when no document with the given id is stored
// in the collection.
type ErrObjectUnknown struct {
	Collection string
	ID         ObjectID
}

func (err ErrObjectUnknown) Error() string {
	return fmt.Sprintf("no object %s with id %s", err.Collection, err.ID)
}

// ErrObjectIDInvalid is returned when a string is not a well-formed object
// id.
type ErrObjectIDInvalid struct {
	ID string
}

func (err ErrObjectIDInvalid) Error() string {
	return fmt.Sprintf("invalid object id: %q", err.ID)
}

// ErrAttributeUnknown is returned when a document or its schema does not
// define the requested attribute.
type ErrAttributeUnknown struct {
	Collection string
	Attribute  string
}

func (err ErrAttributeUnknown) Error() string {
	return fmt.Sprintf("invalid attribute %s.%s", err.Collection, err.Attribute)
}

// ErrLinkInvalid is returned when a link field receives a value it cannot
// hold: a malformed id, a scalar for a sequence link, a relative reference
// that does not resolve within the creation request, and the like.
type ErrLinkInvalid struct {
	Collection string
	Field      string
	Reason     error
}

func (err ErrLinkInvalid) Error() string {
	return fmt.Sprintf("invalid link %s.%s: %v", err.Collection, err.Field, err.Reason)
}

// ErrPathInvalid is returned when a dot path cannot be applied to the target
// document, such as indexing a scalar link or descending through a plain
// attribute.
type ErrPathInvalid struct {
	Path   string
	Reason error
}

func (err ErrPathInvalid) Error() string {
	return fmt.Sprintf("invalid path %q: %v", err.Path, err.Reason)
}
