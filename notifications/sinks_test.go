package notifications

import (
	"sync"
	"testing"
	"time"

	events "github.com/docker/go-events"
)

func TestEventQueue(t *testing.T) {
	const nevents = 1000
	var ts testSink
	metrics := newSafeMetrics("")
	eq := newEventQueue(
		// delayed sync simulates destination slower than channel comms
		&delayedSink{
			Sink:  &ts,
			delay: time.Millisecond * 1,
		}, metrics.eventQueueListener())

	var wg sync.WaitGroup
	for i := 1; i <= nevents; i++ {
		wg.Add(1)
		go func(event events.Event) {
			defer wg.Done()
			if err := eq.Write(event); err != nil {
				t.Errorf("error writing event: %v", err)
			}
		}(createTestEvent(EventActionCreate))
	}

	wg.Wait()
	if t.Failed() {
		t.FailNow()
	}
	checkClose(t, eq)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	metrics.Lock()
	defer metrics.Unlock()

	if ts.count != nevents {
		t.Fatalf("events did not make it to the sink: %d != %d", ts.count, nevents)
	}

	if !ts.closed {
		t.Fatalf("sink should have been closed")
	}

	if metrics.Events != nevents {
		t.Fatalf("unexpected ingress count: %d != %d", metrics.Events, nevents)
	}

	if metrics.Pending != 0 {
		t.Fatalf("unexpected egress count: %d != 0", metrics.Pending)
	}
}

func TestIgnoredSink(t *testing.T) {
	createEvent := createTestEvent(EventActionCreate)
	updateEvent := createTestEvent(EventActionUpdate)

	cases := []struct {
		ignoreActions []string
		expected      []events.Event
	}{
		{nil, []events.Event{createEvent, updateEvent}},
		{[]string{EventActionUpdate}, []events.Event{createEvent}},
		{[]string{EventActionCreate, EventActionUpdate}, nil},
	}

	for _, c := range cases {
		ts := &testSink{}
		s := newIgnoredSink(ts, c.ignoreActions)

		if err := s.Write(createEvent); err != nil {
			t.Fatalf("error writing event: %v", err)
		}
		if err := s.Write(updateEvent); err != nil {
			t.Fatalf("error writing event: %v", err)
		}

		ts.mu.Lock()
		if !eventsEqual(ts.events, c.expected) {
			t.Fatalf("unexpected events: %#v != %#v", ts.events, c.expected)
		}
		ts.mu.Unlock()
	}
}

func eventsEqual(a, b []events.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].(Event).ID != b[i].(Event).ID {
			return false
		}
	}
	return true
}

type testSink struct {
	events []events.Event
	count  int
	mu     sync.Mutex
	closed bool
}

func (ts *testSink) Write(event events.Event) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.events = append(ts.events, event)
	ts.count++
	return nil
}

func (ts *testSink) Close() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.closed = true
	return nil
}

type delayedSink struct {
	events.Sink
	delay time.Duration
}

func (ds *delayedSink) Write(event events.Event) error {
	time.Sleep(ds.delay)
	return ds.Sink.Write(event)
}

func checkClose(t *testing.T, sink events.Sink) {
	if err := sink.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}

	// second close should not crash but should return an error.
	if err := sink.Close(); err == nil {
		t.Fatalf("no error on double close")
	}

	// Write after closed should be an error.
	if err := sink.Write(createTestEvent(EventActionCreate)); err == nil {
		t.Fatalf("write after closed did not error")
	} else if err != ErrSinkClosed {
		t.Fatalf("error should be ErrSinkClosed: %v", err)
	}
}

func createTestEvent(action string) Event {
	event := createEvent(action)
	event.Target.Database = "dms0"
	event.Target.Collection = "BeamState"
	event.Target.ID = "5fdc3a9d8ea9cdd545cf4c83"
	return *event
}
