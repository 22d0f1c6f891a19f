package notifications

import (
	"context"
	"net/http"
	"time"

	events "github.com/docker/go-events"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/internal/requestutil"
	"github.com/heavydata/dms/internal/uuid"
)

type bridge struct {
	ub      URLBuilder
	actor   ActorRecord
	source  SourceRecord
	request RequestRecord
	sink    events.Sink
}

var _ Listener = &bridge{}

// URLBuilder defines a subset of url builder to be used by the event
// listener.
type URLBuilder interface {
	BuildSchemaURL(database string) (string, error)
	BuildObjectURL(database, collection string, id dms.ObjectID) (string, error)
}

// NewBridge returns a notification listener that writes records to sink,
// using the actor and source. Any urls populated in the events created by
// this bridge will be created using the URLBuilder.
func NewBridge(ub URLBuilder, source SourceRecord, actor ActorRecord, request RequestRecord, sink events.Sink) Listener {
	return &bridge{
		ub:      ub,
		actor:   actor,
		source:  source,
		request: request,
		sink:    sink,
	}
}

// NewRequestRecord builds a RequestRecord for use in NewBridge from an
// http.Request, associating it with a request id.
func NewRequestRecord(id string, r *http.Request) RequestRecord {
	return RequestRecord{
		ID:        id,
		Addr:      requestutil.RemoteAddr(r),
		Host:      r.Host,
		Method:    r.Method,
		UserAgent: r.UserAgent(),
	}
}

func (b *bridge) SchemaPut(ctx context.Context, database string) error {
	event := b.createEvent(EventActionSchemaPut)
	event.Target.Database = database

	if b.ub != nil {
		url, err := b.ub.BuildSchemaURL(database)
		if err != nil {
			return err
		}
		event.Target.URL = url
	}

	return b.sink.Write(*event)
}

func (b *bridge) DocumentCreated(ctx context.Context, database, collection string, id dms.ObjectID) error {
	return b.createDocumentEventAndWrite(EventActionCreate, database, collection, id)
}

func (b *bridge) DocumentUpdated(ctx context.Context, database, collection string, id dms.ObjectID) error {
	return b.createDocumentEventAndWrite(EventActionUpdate, database, collection, id)
}

func (b *bridge) createDocumentEventAndWrite(action, database, collection string, id dms.ObjectID) error {
	event := b.createEvent(action)
	event.Target.Database = database
	event.Target.Collection = collection
	event.Target.ID = id

	if b.ub != nil {
		url, err := b.ub.BuildObjectURL(database, collection, id)
		if err != nil {
			return err
		}
		event.Target.URL = url
	}

	return b.sink.Write(*event)
}

// createEvent returns a new event, timestamped, with the specified action.
func (b *bridge) createEvent(action string) *Event {
	event := createEvent(action)
	event.Source = b.source
	event.Actor = b.actor
	event.Request = b.request

	return event
}

// createEvent returns a new event, timestamped, with the specified action.
func createEvent(action string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
	}
}
