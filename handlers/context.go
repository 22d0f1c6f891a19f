package handlers

import (
	"context"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/api/errcode"
	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/internal/dcontext"
)

// Context should contain the request specific context for use across
// handlers. Resources that don't need to be shared across handlers should not
// be on this object.
type Context struct {
	// App points to the application structure that created this context.
	*App
	context.Context

	// Database is the database addressed by the request. The dispatcher sets
	// it for every route below the base route, decorated with the event
	// bridge for the request.
	Database dms.Database

	// Errors is a collection of errors encountered during the request to be
	// returned to the client API. If errors are added to the collection, the
	// handler *must not* start the response via http.ResponseWriter.
	Errors errcode.Errors

	urlBuilder *v1.URLBuilder
}

// Value overrides context.Context.Value to ensure that calls are routed to
// correct context.
func (ctx *Context) Value(key interface{}) interface{} {
	return ctx.Context.Value(key)
}

func getDatabaseName(ctx context.Context) string {
	return dcontext.GetStringValue(ctx, "vars.database")
}

func getCollectionName(ctx context.Context) string {
	return dcontext.GetStringValue(ctx, "vars.collection")
}

func getObjectID(ctx context.Context) (dms.ObjectID, error) {
	return dms.ParseObjectID(dcontext.GetStringValue(ctx, "vars.id"))
}
