package handlers

import (
	"encoding/json"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"

	"github.com/heavydata/dms"
	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/internal/dcontext"
)

// objectsDispatcher constructs the document creation api endpoint.
func objectsDispatcher(ctx *Context, r *http.Request) http.Handler {
	objectsHandler := &objectsHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodPost: http.HandlerFunc(objectsHandler.CreateObject),
	}
}

// objectsHandler creates documents in a collection.
type objectsHandler struct {
	*Context
}

type createAPIResponse struct {
	ID dms.ObjectID `json:"id"`
}

// CreateObject validates the posted document against the schema and stores
// it, answering with the new id and a Location header. Link fields may hold
// ids, inline documents or relative references.
func (oh *objectsHandler) CreateObject(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(oh).Debug("CreateObject")

	collection, err := oh.Database.Collection(oh, getCollectionName(oh))
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	var doc dms.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		oh.Errors = append(oh.Errors, v1.ErrorCodeDocumentInvalid.WithDetail(err.Error()))
		return
	}

	id, err := collection.Create(oh, doc)
	if err != nil {
		oh.Errors = append(oh.Errors, documentError(err))
		return
	}

	location, err := oh.urlBuilder.BuildObjectURL(oh.Database.Name(), collection.Name(), id)
	if err != nil {
		dcontext.GetLogger(oh).Errorf("error building object url: %v", err)
	} else {
		w.Header().Set("Location", location)
	}

	if err := serveJSON(w, http.StatusCreated, createAPIResponse{ID: id}); err != nil {
		dcontext.GetLogger(oh).Errorf("error sending create response: %v", err)
	}
}

// objectListDispatcher constructs the object id listing api endpoint.
func objectListDispatcher(ctx *Context, r *http.Request) http.Handler {
	objectListHandler := &objectListHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodGet: http.HandlerFunc(objectListHandler.GetObjectList),
	}
}

// objectListHandler lists the ids of all documents in a collection.
type objectListHandler struct {
	*Context
}

type objectListAPIResponse struct {
	Objects []dms.ObjectID `json:"objects"`
}

// GetObjectList writes the ids of every stored document to the response.
func (olh *objectListHandler) GetObjectList(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(olh).Debug("GetObjectList")

	collection, err := olh.Database.Collection(olh, getCollectionName(olh))
	if err != nil {
		olh.Errors = append(olh.Errors, apiError(err))
		return
	}

	ids, err := collection.List(olh)
	if err != nil {
		olh.Errors = append(olh.Errors, apiError(err))
		return
	}
	if ids == nil {
		ids = []dms.ObjectID{}
	}

	if err := serveJSON(w, http.StatusOK, objectListAPIResponse{Objects: ids}); err != nil {
		dcontext.GetLogger(olh).Errorf("error sending object list: %v", err)
	}
}
