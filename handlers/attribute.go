package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"

	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/internal/dcontext"
)

// attributeDispatcher constructs the single attribute api endpoint.
func attributeDispatcher(ctx *Context, r *http.Request) http.Handler {
	attributeHandler := &attributeHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodGet: http.HandlerFunc(attributeHandler.GetAttribute),
	}
}

// attributeHandler resolves a dot path to a single non-link attribute.
type attributeHandler struct {
	*Context
}

type attributeAPIResponse struct {
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// GetAttribute descends the dot path from the identified document, through
// link hops if needed, and writes the attribute it terminates on.
func (ah *attributeHandler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(ah).Debug("GetAttribute")

	path := r.URL.Query().Get("path")
	if path == "" {
		ah.Errors = append(ah.Errors, v1.ErrorCodePathInvalid.WithDetail("the path parameter is required"))
		return
	}

	collection, err := ah.Database.Collection(ah, getCollectionName(ah))
	if err != nil {
		ah.Errors = append(ah.Errors, apiError(err))
		return
	}

	id, err := getObjectID(ah)
	if err != nil {
		ah.Errors = append(ah.Errors, apiError(err))
		return
	}

	value, err := collection.Attribute(ah, id, path)
	if err != nil {
		ah.Errors = append(ah.Errors, apiError(err))
		return
	}

	if err := serveJSON(w, http.StatusOK, attributeAPIResponse{Path: path, Value: value}); err != nil {
		dcontext.GetLogger(ah).Errorf("error sending attribute: %v", err)
	}
}
