package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"

	appmiddleware "github.com/janisto/huma-shared-libs/internal/platform/middleware"
)

type testProblem struct {
	Schema string              `json:"$schema,omitempty"`
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) testProblem {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json, got %q", ct)
	}
	var p testProblem
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	return p
}

func TestNotFoundHandler(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	p := decodeProblem(t, rr)
	if p.Title != "Not Found" || p.Detail != "resource not found" {
		t.Fatalf("unexpected problem: %+v", p)
	}
	if !strings.HasSuffix(p.Schema, "/schemas/ErrorModel.json") {
		t.Fatalf("expected $schema, got %q", p.Schema)
	}
	if link := rr.Header().Get("Link"); !strings.Contains(link, `rel="describedBy"`) {
		t.Fatalf("expected describedBy link, got %q", link)
	}
}

func TestMethodNotAllowedHandler(t *testing.T) {
	router := chi.NewRouter()
	router.MethodNotAllowed(MethodNotAllowedHandler())
	router.Get("/items", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/items", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow to list GET, got %q", allow)
	}
	if p := decodeProblem(t, rr); !strings.Contains(p.Detail, "DELETE") {
		t.Fatalf("expected detail to mention DELETE, got %q", p.Detail)
	}
}

func TestWriteProblemCBOR(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Accept", "application/cbor")
	rr := httptest.NewRecorder()

	WriteProblem(rr, req, http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "query.after.id", Message: "expected uuid"})

	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+cbor" {
		t.Fatalf("expected application/problem+cbor, got %q", ct)
	}
	var p huma.ErrorModel
	if err := cbor.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal CBOR problem: %v", err)
	}
	if p.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", p.Status)
	}
	if len(p.Errors) != 1 || p.Errors[0].Location != "query.after.id" {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
}

func TestRecoverer(t *testing.T) {
	router := chi.NewRouter()
	router.Use(appmiddleware.RequestID(), Recoverer())
	api := humachi.New(router, huma.DefaultConfig("Test", "test"))
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if p := decodeProblem(t, rr); p.Detail != "internal server error" {
		t.Fatalf("unexpected detail %q", p.Detail)
	}
}

func TestRecovererRePanicsAbortHandler(t *testing.T) {
	handler := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("expected http.ErrAbortHandler, got %v", err)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Fatal("expected panic to propagate")
}

func TestRecovererKeepsStartedResponse(t *testing.T) {
	handler := Recoverer()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("after write")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "partial" {
		t.Fatalf("expected untouched response, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAcceptsCBOR(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"*/*", false},
		{"application/json", false},
		{"application/cbor", true},
		{"application/cbor;q=0.1", true},
		{"application/json, application/cbor", false},
		{"application/json;q=0.9, application/cbor", true},
		{"application/cbor;q=0, application/json", false},
		{"application/problem+cbor", true},
		{"application/problem+cbor;q=0.5, application/problem+json", false},
		{"*/*;q=0.1, application/cbor", true},
		{"application/problem+json;q=0.1, application/cbor", true},
		{"text/html", false},
	}
	for _, tt := range tests {
		if got := acceptsCBOR(tt.accept); got != tt.want {
			t.Errorf("acceptsCBOR(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}
