package v1

import (
	"net/http"

	"github.com/heavydata/dms/api/errcode"
)

const errGroup = "dms.api.v1"

var (
	// ErrorCodeSchemaUnknown is returned when a database has no schema
	// installed.
	ErrorCodeSchemaUnknown = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "SCHEMA_UNKNOWN",
		Message: "schema unknown to database",
		Description: `The database has no schema installed. Documents cannot
			be stored or fetched until a schema is put.`,
		HTTPStatusCode: http.StatusNotFound,
	})

	// ErrorCodeSchemaConflict is returned when putting a schema over an
	// existing one without force.
	ErrorCodeSchemaConflict = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "SCHEMA_CONFLICT",
		Message: "database already has a schema",
		Description: `A schema is already installed for the database. Set the
			force parameter to replace it.`,
		HTTPStatusCode: http.StatusConflict,
	})

	// ErrorCodeSchemaInvalid is returned when an uploaded schema fails
	// validation.
	ErrorCodeSchemaInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "SCHEMA_INVALID",
		Message: "provided schema is invalid",
		Description: `The uploaded schema document failed validation. The
			detail field carries the validation error.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeDatabaseUnknown is returned when the database name is not
	// valid or the database holds no data.
	ErrorCodeDatabaseUnknown = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "DATABASE_UNKNOWN",
		Message: "database not known to server",
		Description: `The database name was invalid or the database does not
			exist on the server.`,
		HTTPStatusCode: http.StatusNotFound,
	})

	// ErrorCodeCollectionUnknown is returned when the collection is not
	// declared by the database schema.
	ErrorCodeCollectionUnknown = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "COLLECTION_UNKNOWN",
		Message: "collection not declared by schema",
		Description: `The schema installed for the database does not declare
			the named collection.`,
		HTTPStatusCode: http.StatusNotFound,
	})

	// ErrorCodeObjectUnknown is returned when no document exists under the
	// given object id.
	ErrorCodeObjectUnknown = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "OBJECT_UNKNOWN",
		Message: "object unknown to collection",
		Description: `The collection holds no document under the given object
			id.`,
		HTTPStatusCode: http.StatusNotFound,
	})

	// ErrorCodeObjectIDInvalid is returned when the provided object id is
	// not well formed.
	ErrorCodeObjectIDInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:          "OBJECTID_INVALID",
		Message:        "provided object id is invalid",
		Description:    `Object ids are 24 character hex strings.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeAttributeUnknown is returned when a field name is not part
	// of the collection's schema.
	ErrorCodeAttributeUnknown = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "ATTRIBUTE_UNKNOWN",
		Message: "attribute not declared by collection",
		Description: `The collection's schema does not declare the named
			attribute.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeQuantityInvalid is returned when a value fails dtype or
	// shape validation.
	ErrorCodeQuantityInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "QUANTITY_INVALID",
		Message: "provided quantity is invalid",
		Description: `The value did not match the dtype or shape declared for
			the field.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeUnitInvalid is returned when a value carries a unit that
	// cannot be converted to the schema unit.
	ErrorCodeUnitInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "UNIT_INVALID",
		Message: "provided unit is invalid",
		Description: `The unit attached to the value is unknown or not
			convertible to the unit declared for the field.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeLinkInvalid is returned when a link field value cannot be
	// interpreted.
	ErrorCodeLinkInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "LINK_INVALID",
		Message: "provided link value is invalid",
		Description: `Link fields accept object ids, inline documents or
			relative references, matching the declared shape.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodePathInvalid is returned when a dot path cannot be parsed or
	// does not lead where the endpoint requires.
	ErrorCodePathInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "PATH_INVALID",
		Message: "provided path is invalid",
		Description: `The dot path failed to parse, or descends through the
			document in a way the schema does not allow.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeParameterInvalid is returned when a query parameter does not
	// parse as the expected type.
	ErrorCodeParameterInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "PARAMETER_INVALID",
		Message: "query parameter is invalid",
		Description: `A query parameter such as force, max_level, meta or
			tracking did not parse as the expected type.`,
		HTTPStatusCode: http.StatusBadRequest,
	})

	// ErrorCodeDocumentInvalid is returned when a document payload fails
	// validation for reasons not covered by a more specific code.
	ErrorCodeDocumentInvalid = errcode.Register(errGroup, errcode.ErrorDescriptor{
		Value:   "DOCUMENT_INVALID",
		Message: "provided document is invalid",
		Description: `The document payload failed validation against the
			collection schema.`,
		HTTPStatusCode: http.StatusBadRequest,
	})
)
