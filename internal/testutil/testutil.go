// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/janisto/huma-shared-libs/internal/platform/cursor"
)

// fixtureNamespace scopes FixedUUID values.
var fixtureNamespace = uuid.MustParse("6f0f5d1e-3f4b-4a36-9b8c-2f61f1f7a0d4")

// NewUpstream starts an httptest server that is closed when the test ends.
func NewUpstream(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// JSONHandler answers every request with status and body encoded as JSON.
func JSONHandler(t *testing.T, status int, body any) http.HandlerFunc {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding fixture body: %v", err)
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(payload)
	}
}

// Sequence serves handlers in order, repeating the last one once exhausted.
// Calls reports how many requests were served.
type Sequence struct {
	handlers []http.Handler
	calls    atomic.Int64
}

// NewSequence returns a Sequence over handlers. At least one is required.
func NewSequence(t *testing.T, handlers ...http.Handler) *Sequence {
	t.Helper()
	if len(handlers) == 0 {
		t.Fatal("NewSequence needs at least one handler")
	}
	return &Sequence{handlers: handlers}
}

func (s *Sequence) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(s.calls.Add(1)) - 1
	s.handlers[min(n, len(s.handlers)-1)].ServeHTTP(w, r)
}

// Calls returns the number of requests served so far.
func (s *Sequence) Calls() int {
	return int(s.calls.Load())
}

// MustCursor encodes v as a cursor token or fails the test.
func MustCursor(t *testing.T, v any) string {
	t.Helper()
	token, err := cursor.Encode(v)
	if err != nil {
		t.Fatalf("encoding cursor: %v", err)
	}
	return token
}

// FixedUUID returns a deterministic name-based UUID, stable across runs.
func FixedUUID(name string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(name))
}
