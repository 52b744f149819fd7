package urlsafe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidToken indicates the token contains characters outside the base64url alphabet.
var ErrInvalidToken = errors.New("invalid base64url token")

// Encode returns the unpadded base64url (RFC 4648 §5) form of the UTF-8 bytes of value.
func Encode(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// Decode reverses Encode. Trailing padding is tolerated.
func Decode(token string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return string(b), nil
}
