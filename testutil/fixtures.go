package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// HistorySnapshotFixture is a persisted chat history as a browser client
// would have written it
const HistorySnapshotFixture = `{
  "documents": [
    {"id": "0190f1a2-0000-7000-8000-000000000001", "text": "What is in the handbook?", "sender": "user", "timestamp": "2024-07-01T09:30:00.123Z"},
    {"id": "0190f1a2-0000-7000-8000-000000000002", "text": "The handbook covers onboarding.", "sender": "bot", "timestamp": "2024-07-01T09:30:02.456Z"}
  ],
  "knowledge": [
    {"id": "0190f1a2-0000-7000-8000-000000000003", "text": "Sorry, I encountered an error. Please try again.", "sender": "bot", "timestamp": "2024-07-01T10:00:00Z", "isError": true}
  ]
}`

// RecordedRequest is what a RecordingServer saw
type RecordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// RecordingServer is an httptest server that records every request and
// answers with a caller supplied handler
type RecordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewRecordingServer starts a server; handler receives the already read body
func NewRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) *RecordingServer {
	t.Helper()
	rs := &RecordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, RecordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		rs.mu.Unlock()
		handler(w, r, body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

// Requests returns a copy of the recorded requests
func (rs *RecordingServer) Requests() []RecordedRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]RecordedRequest, len(rs.requests))
	copy(out, rs.requests)
	return out
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
