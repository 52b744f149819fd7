package headers

import (
	"context"
	"errors"
)

// ErrEmptyToken is returned by BearerFrom when the token source yields "".
var ErrEmptyToken = errors.New("empty bearer token")

// JSON sets Accept and Content-Type for JSON APIs.
func JSON() Middleware {
	return func(_ context.Context, b *Builder) (*Builder, error) {
		return b.And(Headers{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		}), nil
	}
}

// UserAgent identifies the calling service.
func UserAgent(name string) Middleware {
	return func(_ context.Context, b *Builder) (*Builder, error) {
		return b.Add("User-Agent", name), nil
	}
}

// Bearer sets a static bearer Authorization header.
func Bearer(token string) Middleware {
	return func(_ context.Context, b *Builder) (*Builder, error) {
		return b.Add("Authorization", "Bearer "+token), nil
	}
}

// BearerFrom fetches the token at resolve time.
func BearerFrom(source func(ctx context.Context) (string, error)) Middleware {
	return func(_ context.Context, b *Builder) (*Builder, error) {
		return b.From(func(ctx context.Context) (Headers, error) {
			token, err := source(ctx)
			if err != nil {
				return nil, err
			}
			if token == "" {
				return nil, ErrEmptyToken
			}
			return Headers{"Authorization": "Bearer " + token}, nil
		}), nil
	}
}
