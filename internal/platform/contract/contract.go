// Package contract describes HTTP endpoints once so that the same definition
// registers the server handler and drives the typed client.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/go-querystring/query"
	"github.com/yosida95/uritemplate/v3"
)

var (
	// ErrMissingPathParam is returned when a template variable has no value.
	ErrMissingPathParam = errors.New("missing path parameter")
	// ErrInvalidTemplate is returned when a route path is not a valid URI template.
	ErrInvalidTemplate = errors.New("invalid path template")
)

// Empty marks an absent part of a route: no path params, query or body.
type Empty struct{}

// Route is an endpoint contract. P holds path params, Q query params, B the
// request body and R the response body. P and Q use `url:"name"` tags.
type Route[P, Q, B, R any] struct {
	OperationID   string
	Method        string
	Path          string
	Summary       string
	Description   string
	Tags          []string
	SuccessStatus int
}

func newRoute[P, Q, B, R any](method, id, path string, status int) Route[P, Q, B, R] {
	return Route[P, Q, B, R]{
		OperationID:   id,
		Method:        method,
		Path:          path,
		SuccessStatus: status,
	}
}

// Get declares a GET contract.
func Get[P, Q, R any](id, path string) Route[P, Q, Empty, R] {
	return newRoute[P, Q, Empty, R](http.MethodGet, id, path, http.StatusOK)
}

// Post declares a POST contract answering 201.
func Post[P, Q, B, R any](id, path string) Route[P, Q, B, R] {
	return newRoute[P, Q, B, R](http.MethodPost, id, path, http.StatusCreated)
}

// Put declares a PUT contract.
func Put[P, Q, B, R any](id, path string) Route[P, Q, B, R] {
	return newRoute[P, Q, B, R](http.MethodPut, id, path, http.StatusOK)
}

// Patch declares a PATCH contract.
func Patch[P, Q, B, R any](id, path string) Route[P, Q, B, R] {
	return newRoute[P, Q, B, R](http.MethodPatch, id, path, http.StatusOK)
}

// Delete declares a DELETE contract answering 204.
func Delete[P, Q, R any](id, path string) Route[P, Q, Empty, R] {
	return newRoute[P, Q, Empty, R](http.MethodDelete, id, path, http.StatusNoContent)
}

// WithSummary returns a copy of r carrying OpenAPI summary and tags.
func (r Route[P, Q, B, R]) WithSummary(summary string, tags ...string) Route[P, Q, B, R] {
	r.Summary = summary
	r.Tags = append([]string(nil), tags...)
	return r
}

// WithDescription returns a copy of r carrying an OpenAPI description.
func (r Route[P, Q, B, R]) WithDescription(description string) Route[P, Q, B, R] {
	r.Description = description
	return r
}

// HasBody reports whether the contract carries a request body.
func (r Route[P, Q, B, R]) HasBody() bool {
	return !isEmpty[B]()
}

// BuildPath expands the path template with params. Every template variable
// must be present in params.
func (r Route[P, Q, B, R]) BuildPath(params P) (string, error) {
	tmpl, err := uritemplate.New(r.Path)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidTemplate, r.Path, err)
	}

	names := tmpl.Varnames()
	if len(names) == 0 {
		return r.Path, nil
	}

	encoded, err := encodeValues(params)
	if err != nil {
		return "", fmt.Errorf("encoding path params: %w", err)
	}

	vars := uritemplate.Values{}
	for _, name := range names {
		v := encoded.Get(name)
		if v == "" {
			return "", fmt.Errorf("%w %q for %s", ErrMissingPathParam, name, r.Path)
		}
		vars.Set(name, uritemplate.String(v))
	}

	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", r.Path, err)
	}
	return expanded, nil
}

// BuildQuery encodes q as query parameters.
func (r Route[P, Q, B, R]) BuildQuery(q Q) (url.Values, error) {
	values, err := encodeValues(q)
	if err != nil {
		return nil, fmt.Errorf("encoding query params: %w", err)
	}
	return values, nil
}

// Operation returns the huma operation for this contract.
func (r Route[P, Q, B, R]) Operation() huma.Operation {
	return huma.Operation{
		OperationID:   r.OperationID,
		Method:        r.Method,
		Path:          r.Path,
		Summary:       r.Summary,
		Description:   r.Description,
		Tags:          r.Tags,
		DefaultStatus: r.SuccessStatus,
	}
}

// Register wires a handler for the contract into api. I and O are huma
// input and output structs whose fields mirror P, Q, B and R.
func Register[P, Q, B, R, I, O any](
	api huma.API,
	route Route[P, Q, B, R],
	handler func(ctx context.Context, input *I) (*O, error),
) {
	huma.Register(api, route.Operation(), handler)
}

func encodeValues(v any) (url.Values, error) {
	if v == nil {
		return url.Values{}, nil
	}
	if _, ok := v.(Empty); ok {
		return url.Values{}, nil
	}
	return query.Values(v)
}

func isEmpty[T any]() bool {
	return reflect.TypeFor[T]() == reflect.TypeFor[Empty]()
}
