package pagination

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/huma-shared-libs/internal/platform/cursor"
)

type listInput struct {
	OptionalQuery[fruitCursor]
}

type strictListInput struct {
	MandatoryQuery[fruitCursor]
}

type listOutput struct {
	Body struct {
		Limit  int          `json:"limit"`
		Before *fruitCursor `json:"before,omitempty"`
		After  *fruitCursor `json:"after,omitempty"`
	}
}

func newQueryTestRouter() chi.Router {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("PaginationTest", "test"))

	huma.Register(api, huma.Operation{
		OperationID: "list-fruits",
		Method:      http.MethodGet,
		Path:        "/fruits",
	}, func(_ context.Context, input *listInput) (*listOutput, error) {
		req := input.Request()
		out := &listOutput{}
		out.Body.Limit = input.DefaultLimit()
		out.Body.Before = req.Before
		out.Body.After = req.After
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-fruits-strict",
		Method:      http.MethodGet,
		Path:        "/strict-fruits",
	}, func(_ context.Context, input *strictListInput) (*listOutput, error) {
		req := input.Request()
		out := &listOutput{}
		out.Body.Limit = *req.Limit
		out.Body.After = req.After
		return out, nil
	})
	return router
}

func TestOptionalQueryDecodesCursor(t *testing.T) {
	router := newQueryTestRouter()
	after := cursor.MustEncode(fruitCursor{ID: fruitID, Name: "apple"})

	req := httptest.NewRequest(http.MethodGet, "/fruits?after="+url.QueryEscape(after), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Limit int          `json:"limit"`
		After *fruitCursor `json:"after"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if body.Limit != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, body.Limit)
	}
	if body.After == nil || body.After.Name != "apple" {
		t.Fatalf("unexpected after cursor: %+v", body.After)
	}
}

func TestOptionalQueryRejectsShapeViolation(t *testing.T) {
	router := newQueryTestRouter()
	after := cursor.MustEncode(map[string]any{"id": "1", "name": "apple"})

	req := httptest.NewRequest(http.MethodGet, "/fruits?after="+url.QueryEscape(after), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	found := false
	for _, d := range problem.Errors {
		if d.Location == "query.after.id" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error at query.after.id, got %+v", problem.Errors)
	}
}

func TestOptionalQueryRejectsGarbageCursor(t *testing.T) {
	router := newQueryTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/fruits?before=bm90LWpzb24", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Location != "query.before" {
		t.Fatalf("expected one error at query.before, got %+v", problem.Errors)
	}
}

func TestMandatoryQueryRequiresLimit(t *testing.T) {
	router := newQueryTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/strict-fruits", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestMandatoryQueryWithLimit(t *testing.T) {
	router := newQueryTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/strict-fruits?limit=3", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if body.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", body.Limit)
	}
}
