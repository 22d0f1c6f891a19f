package notifications

import (
	"context"
	"testing"

	events "github.com/docker/go-events"

	"github.com/heavydata/dms"
	v1 "github.com/heavydata/dms/api/v1"
)

var (
	// common environment for expected bridge events.
	source = SourceRecord{
		Addr:       "remote.test",
		InstanceID: "abcdef",
	}
	ub = mustUB(v1.NewURLBuilderFromString("http://test.example.com/", false))

	actor = ActorRecord{
		Name: "test",
	}
	request = RequestRecord{}
)

func TestEventBridgeDocumentCreated(t *testing.T) {
	id := dms.ObjectID("5fdc3a9d8ea9cdd545cf4c83")

	var received []Event
	sink := testSinkFn(func(event events.Event) error {
		received = append(received, event.(Event))
		return nil
	})

	l := createTestEnv(t, sink)
	if err := l.DocumentCreated(context.Background(), "dms0", "BeamState", id); err != nil {
		t.Fatalf("unexpected error notifying document creation: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected one event, got %d", len(received))
	}

	event := received[0]
	if event.Action != EventActionCreate {
		t.Fatalf("unexpected action: %q != %q", event.Action, EventActionCreate)
	}
	if event.Target.Database != "dms0" || event.Target.Collection != "BeamState" || event.Target.ID != id {
		t.Fatalf("unexpected target: %#v", event.Target)
	}

	u, err := ub.BuildObjectURL("dms0", "BeamState", id)
	if err != nil {
		t.Fatalf("error building object url: %v", err)
	}
	if event.Target.URL != u {
		t.Fatalf("unexpected url: %q != %q", event.Target.URL, u)
	}
	if event.Source != source {
		t.Fatalf("source not set correctly: %#v", event.Source)
	}
	if event.Actor != actor {
		t.Fatalf("actor not set correctly: %#v", event.Actor)
	}
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Fatalf("event identity not stamped: %#v", event)
	}
}

func TestEventBridgeSchemaPut(t *testing.T) {
	var received []Event
	sink := testSinkFn(func(event events.Event) error {
		received = append(received, event.(Event))
		return nil
	})

	l := createTestEnv(t, sink)
	if err := l.SchemaPut(context.Background(), "dms0"); err != nil {
		t.Fatalf("unexpected error notifying schema put: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected one event, got %d", len(received))
	}

	event := received[0]
	if event.Action != EventActionSchemaPut {
		t.Fatalf("unexpected action: %q != %q", event.Action, EventActionSchemaPut)
	}
	if event.Target.Database != "dms0" || event.Target.Collection != "" || event.Target.ID != "" {
		t.Fatalf("unexpected target: %#v", event.Target)
	}

	u, err := ub.BuildSchemaURL("dms0")
	if err != nil {
		t.Fatalf("error building schema url: %v", err)
	}
	if event.Target.URL != u {
		t.Fatalf("unexpected url: %q != %q", event.Target.URL, u)
	}
}

func createTestEnv(t *testing.T, fn testSinkFn) Listener {
	return NewBridge(ub, source, actor, request, fn)
}

type testSinkFn func(event events.Event) error

func (tsf testSinkFn) Write(event events.Event) error {
	return tsf(event)
}

func (tsf testSinkFn) Close() error { return nil }

func mustUB(ub *v1.URLBuilder, err error) *v1.URLBuilder {
	if err != nil {
		panic(err)
	}

	return ub
}
