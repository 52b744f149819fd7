package schema

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Code classifies a validation issue.
type Code string

const (
	CodeInvalidType   Code = "invalid_type"
	CodeRequired      Code = "required"
	CodeInvalidValue  Code = "invalid_value"
	CodeInvalidJSON   Code = "invalid_json"
	CodeInvalidCursor Code = "invalid_cursor"
)

// Path is the sequence of object keys and array indices leading to a value.
type Path []string

// String renders the path in dotted form, e.g. "after.id".
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Issue is a single field-level validation failure.
type Issue struct {
	Path    Path           `json:"path"`
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
	Value   any            `json:"-"`
}

// Detail returns the "detail" param when it holds a string.
func (i Issue) Detail() string {
	if d, ok := i.Params["detail"].(string); ok {
		return d
	}
	return ""
}

// ValidationError aggregates every issue found in one validation pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msg := is.Message
		if d := is.Detail(); d != "" {
			msg += " (" + d + ")"
		}
		if len(is.Path) > 0 {
			msg = is.Path.String() + ": " + msg
		}
		parts = append(parts, msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details converts the issues into huma error details rooted at location
// (e.g. "query" or "body"), for use in huma resolvers and 422 responses.
func (e *ValidationError) Details(location string) []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Issues))
	for _, is := range e.Issues {
		msg := is.Message
		if d := is.Detail(); d != "" {
			msg += ": " + d
		}
		errs = append(errs, &huma.ErrorDetail{
			Message:  msg,
			Location: joinLocation(location, is.Path),
			Value:    is.Value,
		})
	}
	return errs
}

// Prefix returns copies of issues with segments prepended to each path.
func Prefix(issues []Issue, segments ...string) []Issue {
	out := make([]Issue, len(issues))
	for i, is := range issues {
		p := make(Path, 0, len(segments)+len(is.Path))
		p = append(p, segments...)
		p = append(p, is.Path...)
		is.Path = p
		out[i] = is
	}
	return out
}

// ParsePath splits a huma location such as "items[0].name" into ["items", "0", "name"].
func ParsePath(location string) Path {
	p := Path{}
	if location == "" {
		return p
	}
	for part := range strings.SplitSeq(location, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				p = append(p, part)
				break
			}
			if open > 0 {
				p = append(p, part[:open])
			}
			rest := part[open+1:]
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				p = append(p, rest)
				break
			}
			p = append(p, rest[:end])
			part = rest[end+1:]
		}
	}
	return p
}

func joinLocation(root string, p Path) string {
	switch {
	case len(p) == 0:
		return root
	case root == "":
		return p.String()
	default:
		return root + "." + p.String()
	}
}

// requiredProperty extracts the property name from huma's
// "expected required property <name> to be present" message.
func requiredProperty(msg string) (string, bool) {
	rest, ok := strings.CutPrefix(msg, "expected required property ")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, " to be present")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

var typeNames = map[string]struct{}{
	"string":  {},
	"number":  {},
	"integer": {},
	"boolean": {},
	"object":  {},
	"array":   {},
	"null":    {},
}

// codeForMessage maps huma validation messages onto issue codes.
func codeForMessage(msg string) Code {
	if strings.HasPrefix(msg, "expected required property") {
		return CodeRequired
	}
	if rest, ok := strings.CutPrefix(msg, "expected "); ok {
		if _, isType := typeNames[rest]; isType {
			return CodeInvalidType
		}
	}
	return CodeInvalidValue
}
