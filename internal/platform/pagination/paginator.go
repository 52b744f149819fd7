package pagination

import (
	"net/url"
	"slices"
	"strconv"

	"github.com/janisto/huma-shared-libs/internal/platform/cursor"
)

// Page holds one keyset window of an ordered collection.
type Page[T any] struct {
	Items      []T
	Total      int
	LinkHeader string
	NextCursor string
	PrevCursor string
}

// Keyset describes how items of type T are ordered relative to cursors of type C.
type Keyset[T, C any] struct {
	// Compare reports whether item sorts before (<0), at (0) or after (>0) the cursor.
	Compare func(item T, c C) int
	// CursorOf returns the cursor identifying item's position.
	CursorOf func(item T) C
}

// Paginate applies keyset pagination to items, which must already be sorted
// ascending in the order Compare describes.
//
// With After set the page starts just past that position; with Before set the
// page ends just before it and holds the last limit items ahead of it. Both
// may be combined to read a bounded window. A limit <= 0 falls back to DefaultLimit.
//
// baseURL and query are used for the RFC 8288 Link header.
func Paginate[T, C any](
	items []T,
	req Request[C],
	keys Keyset[T, C],
	baseURL string,
	query url.Values,
) (Page[T], error) {
	total := len(items)
	limit := req.LimitOr(DefaultLimit)
	if limit <= 0 {
		limit = DefaultLimit
	}

	lo, hi := 0, total
	if req.After != nil {
		lo = indexOrLen(items, func(item T) bool { return keys.Compare(item, *req.After) > 0 })
	}
	if req.Before != nil {
		hi = indexOrLen(items, func(item T) bool { return keys.Compare(item, *req.Before) >= 0 })
	}
	hi = max(hi, lo)

	start, end := lo, min(lo+limit, hi)
	if req.Before != nil && req.After == nil {
		start, end = max(lo, hi-limit), hi
	}
	pageItems := items[start:end]

	var nextCursor, prevCursor string
	var err error
	if len(pageItems) > 0 {
		if end < total {
			if nextCursor, err = cursor.Encode(keys.CursorOf(pageItems[len(pageItems)-1])); err != nil {
				return Page[T]{}, err
			}
		}
		if start > 0 {
			if prevCursor, err = cursor.Encode(keys.CursorOf(pageItems[0])); err != nil {
				return Page[T]{}, err
			}
		}
	}

	q := cloneValues(query)
	q.Set(fieldLimit, strconv.Itoa(limit))

	return Page[T]{
		Items:      pageItems,
		Total:      total,
		LinkHeader: BuildLinkHeader(baseURL, q, nextCursor, prevCursor),
		NextCursor: nextCursor,
		PrevCursor: prevCursor,
	}, nil
}

func indexOrLen[T any](items []T, f func(T) bool) int {
	if i := slices.IndexFunc(items, f); i >= 0 {
		return i
	}
	return len(items)
}
