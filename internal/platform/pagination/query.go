package pagination

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-shared-libs/internal/platform/schema"
)

// DefaultLimit is the page size used when an optional limit is omitted.
const DefaultLimit = 20

// MandatoryQuery embeds into Huma input structs for keyset pagination with a
// required limit. Cursor tokens are decoded into C during request resolution.
type MandatoryQuery[C any] struct {
	Limit  int    `query:"limit"  required:"true" minimum:"1" maximum:"100" doc:"Maximum items per page"`
	Before string `query:"before" doc:"Opaque cursor: return items positioned before it"`
	After  string `query:"after"  doc:"Opaque cursor: return items positioned after it"`

	before *C
	after  *C
}

// Resolve decodes the cursor tokens, reporting failures at query.before / query.after.
func (q *MandatoryQuery[C]) Resolve(_ huma.Context) []error {
	var errs []error
	q.before, q.after, errs = resolveCursors[C](q.Before, q.After)
	return errs
}

// Request returns the decoded request.
func (q *MandatoryQuery[C]) Request() Request[C] {
	limit := q.Limit
	return Request[C]{Limit: &limit, Before: q.before, After: q.after}
}

// OptionalQuery embeds into Huma input structs for keyset pagination where
// the limit may be omitted.
type OptionalQuery[C any] struct {
	Limit  int    `query:"limit"  minimum:"1" maximum:"100" doc:"Maximum items per page (default 20)"`
	Before string `query:"before" doc:"Opaque cursor: return items positioned before it"`
	After  string `query:"after"  doc:"Opaque cursor: return items positioned after it"`

	before *C
	after  *C
}

// Resolve decodes the cursor tokens, reporting failures at query.before / query.after.
func (q *OptionalQuery[C]) Resolve(_ huma.Context) []error {
	var errs []error
	q.before, q.after, errs = resolveCursors[C](q.Before, q.After)
	return errs
}

// Request returns the decoded request. Limit is nil when omitted.
func (q *OptionalQuery[C]) Request() Request[C] {
	r := Request[C]{Before: q.before, After: q.after}
	if q.Limit > 0 {
		limit := q.Limit
		r.Limit = &limit
	}
	return r
}

// DefaultLimit returns the limit, defaulting to DefaultLimit if zero.
func (q *OptionalQuery[C]) DefaultLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

func resolveCursors[C any](before, after string) (*C, *C, []error) {
	var issues []schema.Issue
	var b, a *C
	if before != "" {
		var is []schema.Issue
		b, is = DecodeCursor[C](fieldBefore, before)
		issues = append(issues, is...)
	}
	if after != "" {
		var is []schema.Issue
		a, is = DecodeCursor[C](fieldAfter, after)
		issues = append(issues, is...)
	}
	if len(issues) > 0 {
		return nil, nil, (&schema.ValidationError{Issues: issues}).Details("query")
	}
	return b, a, nil
}
