package notifications

import (
	"fmt"
	"time"

	"github.com/heavydata/dms"
)

// EventAction constants used in event types.
const (
	EventActionCreate    = "create"
	EventActionUpdate    = "update"
	EventActionSchemaPut = "schema"
)

// EventsMediaType is the mediatype for the json event envelope. If the
// Event, ActorRecord, SourceRecord or Envelope structs change, the version
// number should be incremented.
const EventsMediaType = "application/vnd.dms.events.v1+json"

// Envelope defines the fields of a json event envelope message that can hold
// one or more events.
type Envelope struct {
	// Events make up the contents of the envelope. Events present in a single
	// envelope are not necessarily related.
	Events []Event `json:"events,omitempty"`
}

// Event provides the fields required to describe a document event.
type Event struct {
	// ID provides a unique identifier for the event.
	ID string `json:"id,omitempty"`

	// Timestamp is the time at which the event occurred.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Action indicates what action encompasses the provided event.
	Action string `json:"action,omitempty"`

	// Target uniquely describes the target of the event.
	Target TargetRecord `json:"target,omitempty"`

	// Request covers the request that generated the event.
	Request RequestRecord `json:"request,omitempty"`

	// Actor specifies the agent that initiated the event.
	Actor ActorRecord `json:"actor,omitempty"`

	// Source identifies the dms server that generated the event.
	Source SourceRecord `json:"source,omitempty"`
}

// TargetRecord identifies the document or schema affected by an event.
type TargetRecord struct {
	// Database is the database holding the target.
	Database string `json:"database"`

	// Collection is the collection of the target document. Empty for schema
	// events.
	Collection string `json:"collection,omitempty"`

	// ID is the object id of the target document. Empty for schema events.
	ID dms.ObjectID `json:"id,omitempty"`

	// URL provides a direct link to the content.
	URL string `json:"url,omitempty"`
}

// ActorRecord specifies the agent that initiated the event. For most
// situations, this could be from the authorization context of the request.
type ActorRecord struct {
	// Name corresponds to the subject or username associated with the
	// request context that generated the event.
	Name string `json:"name,omitempty"`
}

// RequestRecord covers the request that generated the event.
type RequestRecord struct {
	// ID uniquely identifies the request that initiated the event.
	ID string `json:"id,omitempty"`

	// Addr contains the ip or hostname and possibly port of the client
	// connection that initiated the event.
	Addr string `json:"addr,omitempty"`

	// Host is the externally accessible host name of the server instance,
	// typically sent in the host header on the request.
	Host string `json:"host,omitempty"`

	// Method has the request method that generated the event.
	Method string `json:"method,omitempty"`

	// UserAgent contains the user agent header of the request.
	UserAgent string `json:"useragent,omitempty"`
}

// SourceRecord identifies the source of the event.
type SourceRecord struct {
	// Addr contains the ip or hostname and the port of the server that
	// generated the event.
	Addr string `json:"addr,omitempty"`

	// InstanceID identifies a running instance of an application.
	InstanceID string `json:"instanceID,omitempty"`
}

// ErrSinkClosed is returned if a write is issued to a sink that has been
// closed. If encountered, the error should be considered terminal and
// retries will not be successful.
var ErrSinkClosed = fmt.Errorf("sink: closed")
