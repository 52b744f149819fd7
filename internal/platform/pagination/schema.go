package pagination

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/janisto/huma-shared-libs/internal/platform/cursor"
	"github.com/janisto/huma-shared-libs/internal/platform/schema"
)

// Mode controls whether a pagination request must carry a limit.
type Mode int

const (
	// LimitRequired rejects requests without a limit.
	LimitRequired Mode = iota
	// LimitOptional accepts requests without a limit; the default page size is the caller's policy.
	LimitOptional
)

const (
	fieldLimit  = "limit"
	fieldBefore = "before"
	fieldAfter  = "after"
)

// Request is the validated form of a pagination request: cursor tokens have
// been replaced by decoded, shape-checked cursor values of type C.
type Request[C any] struct {
	Limit  *int `json:"limit,omitempty"`
	Before *C   `json:"before,omitempty"`
	After  *C   `json:"after,omitempty"`
}

// LimitOr returns the requested limit or def when none was given.
func (r Request[C]) LimitOr(def int) int {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

type requiredLimitInput struct {
	Limit  int    `json:"limit"            required:"true"  minimum:"1"`
	Before string `json:"before,omitempty" required:"false"`
	After  string `json:"after,omitempty"  required:"false"`
}

type optionalLimitInput struct {
	Limit  int    `json:"limit,omitempty"  required:"false" minimum:"1"`
	Before string `json:"before,omitempty" required:"false"`
	After  string `json:"after,omitempty"  required:"false"`
}

// Schema validates raw pagination requests whose before/after fields carry
// opaque cursor tokens encoding values of shape C.
type Schema[C any] struct {
	mode  Mode
	input func(raw map[string]any) (limit int, err error)
}

// NewSchema builds a request schema for cursor shape C.
func NewSchema[C any](mode Mode) *Schema[C] {
	s := &Schema[C]{mode: mode}
	if mode == LimitRequired {
		s.input = func(raw map[string]any) (int, error) {
			in, err := schema.For[requiredLimitInput]().Parse(raw)
			return in.Limit, err
		}
	} else {
		s.input = func(raw map[string]any) (int, error) {
			in, err := schema.For[optionalLimitInput]().Parse(raw)
			return in.Limit, err
		}
	}
	return s
}

// Mandatory is shorthand for NewSchema[C](LimitRequired).
func Mandatory[C any]() *Schema[C] {
	return NewSchema[C](LimitRequired)
}

// Optional is shorthand for NewSchema[C](LimitOptional).
func Optional[C any]() *Schema[C] {
	return NewSchema[C](LimitOptional)
}

// Mode reports the limit policy of the schema.
func (s *Schema[C]) Mode() Mode {
	return s.mode
}

// Parse validates input and decodes its cursors. Keys other than limit,
// before and after are ignored. All issues across all fields are returned
// together as a *schema.ValidationError.
func (s *Schema[C]) Parse(input map[string]any) (Request[C], error) {
	raw := make(map[string]any, 3)
	for _, k := range []string{fieldLimit, fieldBefore, fieldAfter} {
		if v, ok := input[k]; ok {
			raw[k] = v
		}
	}

	var issues []schema.Issue
	limit, err := s.input(raw)
	if err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return Request[C]{}, err
		}
		issues = append(issues, verr.Issues...)
	}
	rejected := rejectedFields(issues)

	var out Request[C]
	for _, field := range []string{fieldBefore, fieldAfter} {
		token, ok := raw[field].(string)
		if !ok {
			continue
		}
		if _, bad := rejected[field]; bad {
			continue
		}
		c, cursorIssues := DecodeCursor[C](field, token)
		if len(cursorIssues) > 0 {
			issues = append(issues, cursorIssues...)
			continue
		}
		if field == fieldBefore {
			out.Before = c
		} else {
			out.After = c
		}
	}

	if len(issues) > 0 {
		return Request[C]{}, &schema.ValidationError{Issues: issues}
	}
	if _, ok := raw[fieldLimit]; ok {
		out.Limit = &limit
	}
	return out, nil
}

// ParseQuery validates URL query parameters. A limit that is not a base-10
// integer is passed through as a string and reported as a type error.
func (s *Schema[C]) ParseQuery(values url.Values) (Request[C], error) {
	input := make(map[string]any, 3)
	if values.Has(fieldLimit) {
		v := values.Get(fieldLimit)
		if n, err := strconv.Atoi(v); err == nil {
			input[fieldLimit] = n
		} else {
			input[fieldLimit] = v
		}
	}
	for _, field := range []string{fieldBefore, fieldAfter} {
		if values.Has(field) {
			input[field] = values.Get(field)
		}
	}
	return s.Parse(input)
}

// DecodeCursor decodes token and validates it against shape C. Issues are
// reported under field: a token that is not a cursor yields one invalid_cursor
// issue at [field]; a cursor of the wrong shape yields the shape's own issues
// nested below [field].
func DecodeCursor[C any](field, token string) (*C, []schema.Issue) {
	raw, err := cursor.Decode(token)
	if err != nil {
		return nil, []schema.Issue{invalidCursor(field, token, err)}
	}
	c, err := schema.ForLenient[C]().Parse(raw)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, schema.Prefix(verr.Issues, field)
		}
		return nil, []schema.Issue{invalidCursor(field, token, err)}
	}
	return &c, nil
}

func invalidCursor(field, token string, err error) schema.Issue {
	return schema.Issue{
		Path:    schema.Path{field},
		Code:    schema.CodeInvalidCursor,
		Message: "invalid cursor",
		Params:  map[string]any{"detail": err.Error()},
		Value:   token,
	}
}

func rejectedFields(issues []schema.Issue) map[string]struct{} {
	out := make(map[string]struct{}, len(issues))
	for _, is := range issues {
		if len(is.Path) > 0 {
			out[is.Path[0]] = struct{}{}
		}
	}
	return out
}
