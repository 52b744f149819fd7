package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// Validator checks JSON-shaped values against the huma schema generated for T
// and converts valid values into T.
type Validator[T any] struct {
	registry huma.Registry
	schema   *huma.Schema
	mode     huma.ValidateMode
}

type cacheKey struct {
	t       reflect.Type
	mode    huma.ValidateMode
	lenient bool
}

var validators sync.Map

// For returns the request-side validator for T. Struct tags understood by huma
// (format, minimum, enum, required, ...) apply.
func For[T any]() *Validator[T] {
	return load[T](huma.ModeWriteToServer, false)
}

// ForLenient is For, except object properties T does not declare are
// accepted by Check and dropped by Parse.
func ForLenient[T any]() *Validator[T] {
	return load[T](huma.ModeWriteToServer, true)
}

// ForResponse returns the response-side validator for T.
func ForResponse[T any]() *Validator[T] {
	return load[T](huma.ModeReadFromServer, false)
}

func load[T any](mode huma.ValidateMode, lenient bool) *Validator[T] {
	key := cacheKey{t: reflect.TypeFor[T](), mode: mode, lenient: lenient}
	if v, ok := validators.Load(key); ok {
		return v.(*Validator[T])
	}
	v, _ := validators.LoadOrStore(key, newValidator[T](mode, lenient))
	return v.(*Validator[T])
}

func newValidator[T any](mode huma.ValidateMode, lenient bool) *Validator[T] {
	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	s := registry.Schema(reflect.TypeFor[T](), false, "")
	if lenient {
		allowExtra(s)
		for _, named := range registry.Map() {
			allowExtra(named)
		}
	}
	for _, named := range registry.Map() {
		named.PrecomputeMessages()
	}
	s.PrecomputeMessages()
	return &Validator[T]{registry: registry, schema: s, mode: mode}
}

// allowExtra lifts additionalProperties: false from s and any inline schemas
// below it. Named schemas are reached through the registry.
func allowExtra(s *huma.Schema) {
	if s == nil {
		return
	}
	if closed, ok := s.AdditionalProperties.(bool); ok && !closed {
		s.AdditionalProperties = true
	}
	if values, ok := s.AdditionalProperties.(*huma.Schema); ok {
		allowExtra(values)
	}
	for _, p := range s.Properties {
		allowExtra(p)
	}
	allowExtra(s.Items)
}

// Schema exposes the generated JSON schema.
func (v *Validator[T]) Schema() *huma.Schema {
	return v.schema
}

// Check validates value and returns every issue found. The value is first
// normalized through JSON so Go maps, slices and structs are accepted.
func (v *Validator[T]) Check(value any) []Issue {
	normalized, err := normalize(value)
	if err != nil {
		return []Issue{invalidJSON(err)}
	}
	return v.check(normalized)
}

// Parse validates value and converts it into T.
func (v *Validator[T]) Parse(value any) (T, error) {
	var out T
	normalized, err := normalize(value)
	if err != nil {
		return out, &ValidationError{Issues: []Issue{invalidJSON(err)}}
	}
	return v.parseNormalized(normalized)
}

// ParseJSON validates raw JSON and converts it into T.
func (v *Validator[T]) ParseJSON(data []byte) (T, error) {
	var out T
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return out, &ValidationError{Issues: []Issue{invalidJSON(err)}}
	}
	return v.parseNormalized(normalized)
}

func (v *Validator[T]) parseNormalized(normalized any) (T, error) {
	var out T
	if issues := v.check(normalized); len(issues) > 0 {
		return out, &ValidationError{Issues: issues}
	}
	b, err := json.Marshal(normalized)
	if err != nil {
		return out, fmt.Errorf("re-encoding validated value: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("converting validated value: %w", err)
	}
	return out, nil
}

func (v *Validator[T]) check(normalized any) []Issue {
	res := &huma.ValidateResult{}
	pb := huma.NewPathBuffer([]byte{}, 0)
	huma.Validate(v.registry, v.schema, pb, v.mode, normalized, res)
	if len(res.Errors) == 0 {
		return nil
	}
	issues := make([]Issue, 0, len(res.Errors))
	for _, err := range res.Errors {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			issues = append(issues, Issue{Path: Path{}, Code: CodeInvalidValue, Message: err.Error()})
			continue
		}
		path := ParsePath(detail.Location)
		code := codeForMessage(detail.Message)
		if code == CodeRequired {
			if name, ok := requiredProperty(detail.Message); ok {
				path = append(path, name)
			}
		}
		issues = append(issues, Issue{
			Path:    path,
			Code:    code,
			Message: detail.Message,
			Value:   detail.Value,
		})
	}
	return issues
}

func normalize(value any) (any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func invalidJSON(err error) Issue {
	return Issue{Path: Path{}, Code: CodeInvalidJSON, Message: "expected JSON value", Params: map[string]any{"detail": err.Error()}}
}
