package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// RecordedRequest is one request observed by a StubBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// StubBackend is an httptest server answering every request with a fixed
// status and body. It counts calls and records the decoded request bodies.
type StubBackend struct {
	*httptest.Server

	status int
	body   string
	delay  time.Duration

	calls    atomic.Int64
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewStubBackend starts a backend replying status with body. The server is
// closed when the test ends.
func NewStubBackend(t *testing.T, status int, body string) *StubBackend {
	t.Helper()
	s := &StubBackend{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// NewSlowStubBackend is like NewStubBackend but waits delay before replying.
func NewSlowStubBackend(t *testing.T, delay time.Duration, status int, body string) *StubBackend {
	t.Helper()
	s := &StubBackend{status: status, body: body, delay: delay}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *StubBackend) serve(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)

	rec := RecordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = io.WriteString(w, s.body)
}

// Calls returns how many requests the backend received.
func (s *StubBackend) Calls() int { return int(s.calls.Load()) }

// Requests returns a copy of the recorded requests.
func (s *StubBackend) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request; ok is false when none arrived.
func (s *StubBackend) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}
