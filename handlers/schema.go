package handlers

import (
	"io"
	"net/http"
	"strconv"

	gorillahandlers "github.com/gorilla/handlers"

	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/internal/dcontext"
	"github.com/heavydata/dms/schema"
)

// schemaDispatcher constructs the schema handler api endpoint.
func schemaDispatcher(ctx *Context, r *http.Request) http.Handler {
	schemaHandler := &schemaHandler{Context: ctx}

	return gorillahandlers.MethodHandler{
		http.MethodGet: http.HandlerFunc(schemaHandler.GetSchema),
		http.MethodPut: http.HandlerFunc(schemaHandler.PutSchema),
	}
}

// schemaHandler handles requests for the schema installed on a database.
type schemaHandler struct {
	*Context
}

// GetSchema writes the installed schema document to the response.
func (sh *schemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(sh).Debug("GetSchema")

	s, err := sh.Database.Schema(sh)
	if err != nil {
		sh.Errors = append(sh.Errors, apiError(err))
		return
	}

	if err := serveJSON(w, http.StatusOK, s); err != nil {
		dcontext.GetLogger(sh).Errorf("error sending schema: %v", err)
	}
}

// PutSchema validates and installs a schema on the database. An installed
// schema is only replaced when the force parameter is set.
func (sh *schemaHandler) PutSchema(w http.ResponseWriter, r *http.Request) {
	dcontext.GetLogger(sh).Debug("PutSchema")

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		var err error
		force, err = strconv.ParseBool(v)
		if err != nil {
			sh.Errors = append(sh.Errors, v1.ErrorCodeParameterInvalid.WithDetail("force: "+err.Error()))
			return
		}
	}

	p, err := io.ReadAll(r.Body)
	if err != nil {
		sh.Errors = append(sh.Errors, v1.ErrorCodeSchemaInvalid.WithDetail(err.Error()))
		return
	}

	s, err := schema.Parse(p)
	if err != nil {
		sh.Errors = append(sh.Errors, v1.ErrorCodeSchemaInvalid.WithDetail(err.Error()))
		return
	}

	if err := sh.Database.SetSchema(sh, s, force); err != nil {
		sh.Errors = append(sh.Errors, apiError(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
}
