package notifications

import (
	"context"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/schema"
)

// Listener describes the methods invoked when documents or schemas change.
type Listener interface {
	// SchemaPut is called after a schema has been installed for a database.
	SchemaPut(ctx context.Context, database string) error

	// DocumentCreated is called after a create request has persisted its
	// root document. Inline link documents persist within the same request
	// and do not produce separate events.
	DocumentCreated(ctx context.Context, database, collection string, id dms.ObjectID) error

	// DocumentUpdated is called after an existing document has been patched.
	DocumentUpdated(ctx context.Context, database, collection string, id dms.ObjectID) error
}

type namespaceListener struct {
	dms.Namespace
	listener Listener
}

// Listen dispatches events on the namespace to the listener.
func Listen(ns dms.Namespace, listener Listener) dms.Namespace {
	return &namespaceListener{
		Namespace: ns,
		listener:  listener,
	}
}

func (nl *namespaceListener) Database(ctx context.Context, name string) (dms.Database, error) {
	db, err := nl.Namespace.Database(ctx, name)
	if err != nil {
		return nil, err
	}
	return &databaseListener{
		Database: db,
		parent:   nl,
	}, nil
}

type databaseListener struct {
	dms.Database
	parent *namespaceListener
}

func (dl *databaseListener) SetSchema(ctx context.Context, s schema.Schema, force bool) error {
	if err := dl.Database.SetSchema(ctx, s, force); err != nil {
		return err
	}
	return dl.parent.listener.SchemaPut(ctx, dl.Name())
}

func (dl *databaseListener) Collection(ctx context.Context, name string) (dms.Collection, error) {
	coll, err := dl.Database.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	return &collectionListener{
		Collection: coll,
		parent:     dl,
	}, nil
}

type collectionListener struct {
	dms.Collection
	parent *databaseListener
}

func (cl *collectionListener) Create(ctx context.Context, fields dms.Document) (dms.ObjectID, error) {
	id, err := cl.Collection.Create(ctx, fields)
	if err != nil {
		return "", err
	}
	if lerr := cl.parent.parent.listener.DocumentCreated(ctx, cl.parent.Name(), cl.Name(), id); lerr != nil {
		return id, lerr
	}
	return id, nil
}

func (cl *collectionListener) Update(ctx context.Context, id dms.ObjectID, fields dms.Document) error {
	if err := cl.Collection.Update(ctx, id, fields); err != nil {
		return err
	}
	return cl.parent.parent.listener.DocumentUpdated(ctx, cl.parent.Name(), cl.Name(), id)
}
