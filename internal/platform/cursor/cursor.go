package cursor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/janisto/huma-shared-libs/internal/platform/urlsafe"
)

// ErrInvalidCursor is matched by every DecodeError.
var ErrInvalidCursor = errors.New("invalid cursor")

// DecodeError reports a token that does not carry a JSON payload.
type DecodeError struct {
	Token string
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cursor %q is not valid JSON: %v", e.Token, e.cause)
}

// Unwrap exposes the underlying base64url or JSON error.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidCursor, e.cause}
}

// Encode serializes v as JSON and wraps it in an opaque URL-safe token.
// The error is only non-nil for values encoding/json cannot represent.
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}
	return urlsafe.Encode(string(b)), nil
}

// MustEncode is like Encode but panics on unserializable input.
func MustEncode(v any) string {
	token, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return token
}

// Decode parses a token back into its JSON value. It never panics: malformed
// tokens yield a *DecodeError.
func Decode(token string) (any, error) {
	var v any
	if err := DecodeInto(token, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeInto parses a token into dst.
func DecodeInto(token string, dst any) error {
	text, err := urlsafe.Decode(token)
	if err != nil {
		return &DecodeError{Token: token, cause: err}
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return &DecodeError{Token: token, cause: err}
	}
	return nil
}
