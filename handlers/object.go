package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	gorillahandlers "github.com/gorilla/handlers"

	"github.com/heavydata/dms"
	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/internal/dcontext"
)

// objectDispatcher constructs the single document api endpoint.
func objectDispatcher(ctx *Context, r *http.Request) http.Handler {
	objectHandler := &objectHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodGet:   http.HandlerFunc(objectHandler.GetObject),
		http.MethodPatch: http.HandlerFunc(objectHandler.UpdateObject),
	}
}

// objectHandler serves reads and updates of a single document.
type objectHandler struct {
	*Context
}

// getOptions assembles dms.GetOptions from the request query. Link
// resolution is unlimited unless max_level is given.
func getOptions(r *http.Request) (dms.GetOptions, error) {
	opts := dms.GetOptions{MaxLevel: dms.UnlimitedLevel}
	q := r.URL.Query()

	opts.Path = q.Get("path")

	if v := q.Get("max_level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return opts, v1.ErrorCodeParameterInvalid.WithDetail("max_level: " + err.Error())
		}
		opts.MaxLevel = level
	}

	for _, flag := range []struct {
		name   string
		target *bool
	}{
		{"meta", &opts.Meta},
		{"tracking", &opts.Tracking},
	} {
		if v := q.Get(flag.name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, v1.ErrorCodeParameterInvalid.WithDetail(flag.name + ": " + err.Error())
			}
			*flag.target = b
		}
	}

	return opts, nil
}

// GetObject renders the identified document, honouring the path, max_level,
// meta and tracking query parameters.
func (oh *objectHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(oh).Debug("GetObject")

	collection, err := oh.Database.Collection(oh, getCollectionName(oh))
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	id, err := getObjectID(oh)
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	opts, err := getOptions(r)
	if err != nil {
		oh.Errors = append(oh.Errors, err)
		return
	}

	doc, err := collection.Get(oh, id, opts)
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	if err := serveJSON(w, http.StatusOK, doc); err != nil {
		dcontext.GetLogger(oh).Errorf("error sending object: %v", err)
	}
}

// UpdateObject replaces the posted fields on a stored document. Values are
// validated like on create; link fields take raw ids only.
func (oh *objectHandler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(oh).Debug("UpdateObject")

	collection, err := oh.Database.Collection(oh, getCollectionName(oh))
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	id, err := getObjectID(oh)
	if err != nil {
		oh.Errors = append(oh.Errors, apiError(err))
		return
	}

	var fields dms.Document
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		oh.Errors = append(oh.Errors, v1.ErrorCodeDocumentInvalid.WithDetail(err.Error()))
		return
	}

	if err := collection.Update(oh, id, fields); err != nil {
		oh.Errors = append(oh.Errors, documentError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
