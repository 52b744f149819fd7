package headers

import (
	"context"
	"maps"
	"net/http"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Headers is a flat header map. Resolve returns canonical keys
// (see http.CanonicalHeaderKey).
type Headers map[string]string

// Apply sets every header on h, replacing existing values.
func (hs Headers) Apply(h http.Header) {
	for k, v := range hs {
		h.Set(k, v)
	}
}

// Contribution produces headers at resolve time, e.g. after fetching a token.
type Contribution func(ctx context.Context) (Headers, error)

// Middleware is a reusable header recipe. It receives a fresh builder and
// returns the builder whose headers should be merged into the caller's.
type Middleware func(ctx context.Context, b *Builder) (*Builder, error)

// Builder composes headers lazily. Builders are immutable: every method
// returns a new Builder and leaves the receiver untouched, so a base builder
// can be shared and extended per request.
type Builder struct {
	parts []Contribution
}

// New returns a builder seeded with initial, which may be nil.
func New(initial Headers) *Builder {
	b := &Builder{}
	if len(initial) == 0 {
		return b
	}
	return b.And(initial)
}

func (b *Builder) clone() *Builder {
	if b == nil {
		return &Builder{}
	}
	return &Builder{parts: slices.Clone(b.parts)}
}

func (b *Builder) with(c Contribution) *Builder {
	out := b.clone()
	out.parts = append(out.parts, c)
	return out
}

// Add sets a single header.
func (b *Builder) Add(key, value string) *Builder {
	return b.And(Headers{key: value})
}

// And sets every header in hs.
func (b *Builder) And(hs Headers) *Builder {
	snapshot := maps.Clone(hs)
	return b.with(func(context.Context) (Headers, error) {
		return snapshot, nil
	})
}

// From registers a contribution evaluated at resolve time.
func (b *Builder) From(c Contribution) *Builder {
	return b.with(c)
}

// Merge appends the contributions of other after those of b.
func (b *Builder) Merge(other *Builder) *Builder {
	out := b.clone()
	if other != nil {
		out.parts = append(out.parts, other.parts...)
	}
	return out
}

// With applies mw to a fresh builder at resolve time and merges the result
// at this position.
func (b *Builder) With(mw Middleware) *Builder {
	return b.with(func(ctx context.Context) (Headers, error) {
		applied, err := mw(ctx, New(nil))
		if err != nil {
			return nil, err
		}
		return applied.Resolve(ctx)
	})
}

// Len reports the number of pending contributions.
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.parts)
}

// Resolve evaluates all contributions and flattens them into one map keyed
// by canonical header name. Contributions run concurrently but are applied in
// registration order, so on key collisions, including keys that differ only
// in case, the later registration wins regardless of which finished first.
// The first error cancels the remaining contributions' context.
func (b *Builder) Resolve(ctx context.Context) (Headers, error) {
	out := Headers{}
	if b == nil || len(b.parts) == 0 {
		return out, nil
	}

	results := make([]Headers, len(b.parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range b.parts {
		g.Go(func() error {
			hs, err := part(gctx)
			if err != nil {
				return err
			}
			results[i] = hs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, hs := range results {
		for k, v := range hs {
			out[http.CanonicalHeaderKey(k)] = v
		}
	}
	return out, nil
}
