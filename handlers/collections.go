package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"

	"github.com/heavydata/dms/internal/dcontext"
)

// collectionsDispatcher constructs the collection listing api endpoint.
func collectionsDispatcher(ctx *Context, r *http.Request) http.Handler {
	collectionsHandler := &collectionsHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodGet: http.HandlerFunc(collectionsHandler.GetCollections),
	}
}

// collectionsHandler lists the collections declared by the database schema.
type collectionsHandler struct {
	*Context
}

type collectionsAPIResponse struct {
	Collections []string `json:"collections"`
}

// GetCollections writes the schema's collection names to the response.
func (ch *collectionsHandler) GetCollections(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(ch).Debug("GetCollections")

	names, err := ch.Database.Collections(ch)
	if err != nil {
		ch.Errors = append(ch.Errors, apiError(err))
		return
	}
	if names == nil {
		names = []string{}
	}

	if err := serveJSON(w, http.StatusOK, collectionsAPIResponse{Collections: names}); err != nil {
		dcontext.GetLogger(ch).Errorf("error sending collection list: %v", err)
	}
}
