package dms

import (
	"gopkg.in/mgo.v2/bson"
)

// ObjectID identifies a stored document. The representation is the 24
// character hex form of a BSON object id, which keeps ids stable across the
// mongodb backend and the path-addressed ones.
type ObjectID string

// NewObjectID generates a fresh, time-ordered object id.
func NewObjectID() ObjectID {
	return ObjectID(bson.NewObjectId().Hex())
}

// ParseObjectID validates the string form of an object id.
func ParseObjectID(s string) (ObjectID, error) {
	if !bson.IsObjectIdHex(s) {
		return "", ErrObjectIDInvalid{ID: s}
	}
	return ObjectID(s), nil
}

// IsObjectIDHex reports whether s is a well-formed object id. Link fields use
// this to tell raw ids apart from inline documents and relative references.
func IsObjectIDHex(s string) bool {
	return bson.IsObjectIdHex(s)
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return string(id)
}

// Validate returns an error if the id is not well formed.
func (id ObjectID) Validate() error {
	if !bson.IsObjectIdHex(string(id)) {
		return ErrObjectIDInvalid{ID: string(id)}
	}
	return nil
}
