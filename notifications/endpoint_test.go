package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TestEndpointSend makes sure the endpoint pipeline (ignored -> queue ->
// retry -> http) delivers events and fills in configuration defaults.
func TestEndpointSend(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Envelope
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var envelope Envelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		received = append(received, envelope)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := NewEndpoint("test-endpoint", server.URL, EndpointConfig{
		IgnoredActions: []string{EventActionUpdate},
	})

	if endpoint.Timeout != time.Second || endpoint.Threshold != 10 || endpoint.Backoff != time.Second {
		t.Fatalf("endpoint defaults not applied: %#v", endpoint.EndpointConfig)
	}

	if err := endpoint.Write(createTestEvent(EventActionCreate)); err != nil {
		t.Fatalf("unexpected error writing event: %v", err)
	}

	// ignored action is dropped before the queue.
	if err := endpoint.Write(createTestEvent(EventActionUpdate)); err != nil {
		t.Fatalf("unexpected error writing ignored event: %v", err)
	}

	// Wait for the queue to drain.
	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event did not arrive at endpoint")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected exactly one envelope, got %d", len(received))
	}
	if len(received[0].Events) != 1 || received[0].Events[0].Action != EventActionCreate {
		t.Fatalf("unexpected envelope contents: %#v", received[0])
	}
}
