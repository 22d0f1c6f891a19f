package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/api/errcode"
	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/quantity"
)

// serveJSON marshals v as the response body with the given status code. Once
// called the handler must not add errors to the context.
func serveJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// apiError translates errors from the storage layer into registered API
// error codes. Errors that don't map to a known condition come back as
// UNKNOWN, which serves as a 500.
func apiError(err error) error {
	switch {
	case errors.Is(err, dms.ErrSchemaUnknown):
		return v1.ErrorCodeSchemaUnknown.WithDetail(err.Error())
	case errors.Is(err, dms.ErrUnsupported):
		return errcode.ErrorCodeUnsupported
	}

	var (
		dbUnknown        dms.ErrDatabaseUnknown
		dbNameInvalid    dms.ErrDatabaseNameInvalid
		schemaConflict   dms.ErrSchemaConflict
		collUnknown      dms.ErrCollectionUnknown
		objUnknown       dms.ErrObjectUnknown
		idInvalid        dms.ErrObjectIDInvalid
		attrUnknown      dms.ErrAttributeUnknown
		linkInvalid      dms.ErrLinkInvalid
		pathInvalid      dms.ErrPathInvalid
		unitInvalid      quantity.ErrUnitInvalid
		unitIncompatible quantity.ErrUnitIncompatible
		unitMismatch     quantity.ErrUnitMismatch
		typeMismatch     quantity.ErrTypeMismatch
		dimMismatch      quantity.ErrDimensionMismatch
		shapeMismatch    quantity.ErrShapeMismatch
	)

	switch {
	case errors.As(err, &dbUnknown), errors.As(err, &dbNameInvalid):
		return v1.ErrorCodeDatabaseUnknown.WithDetail(err.Error())
	case errors.As(err, &schemaConflict):
		return v1.ErrorCodeSchemaConflict.WithDetail(err.Error())
	case errors.As(err, &collUnknown):
		return v1.ErrorCodeCollectionUnknown.WithDetail(err.Error())
	case errors.As(err, &objUnknown):
		return v1.ErrorCodeObjectUnknown.WithDetail(err.Error())
	case errors.As(err, &idInvalid):
		return v1.ErrorCodeObjectIDInvalid.WithDetail(err.Error())
	case errors.As(err, &attrUnknown):
		return v1.ErrorCodeAttributeUnknown.WithDetail(err.Error())
	case errors.As(err, &linkInvalid):
		return v1.ErrorCodeLinkInvalid.WithDetail(err.Error())
	case errors.As(err, &pathInvalid):
		return v1.ErrorCodePathInvalid.WithDetail(err.Error())
	case errors.As(err, &unitInvalid), errors.As(err, &unitIncompatible), errors.As(err, &unitMismatch):
		return v1.ErrorCodeUnitInvalid.WithDetail(err.Error())
	case errors.As(err, &typeMismatch), errors.As(err, &dimMismatch), errors.As(err, &shapeMismatch):
		return v1.ErrorCodeQuantityInvalid.WithDetail(err.Error())
	}

	return errcode.ErrorCodeUnknown.WithDetail(err.Error())
}

// documentError is like apiError but treats unrecognized errors as payload
// validation failures rather than server faults. Write paths use it because
// the storage layer reports some validation problems as plain errors.
func documentError(err error) error {
	translated := apiError(err)
	if e, ok := translated.(errcode.Error); ok && e.Code == errcode.ErrorCodeUnknown {
		return v1.ErrorCodeDocumentInvalid.WithDetail(err.Error())
	}
	return translated
}
