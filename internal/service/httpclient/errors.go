package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound           = errors.New("upstream resource not found")
	ErrForbidden          = errors.New("upstream access forbidden")
	ErrRateLimited        = errors.New("upstream rate limit exceeded")
	ErrInvalidRequest     = errors.New("upstream rejected request")
	ErrUpstream           = errors.New("upstream error")
	ErrResponseValidation = errors.New("upstream response failed validation")
)

// Kind classifies upstream failures.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindRateLimited Kind = "rate_limited"
	KindInvalid     Kind = "invalid"
	KindUpstream    Kind = "upstream"
)

// UpstreamError carries the failing response's metadata.
type UpstreamError struct {
	Operation  string
	Kind       Kind
	Status     int
	RetryAfter time.Duration
	Message    string
	cause      error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "upstream error"
	}
	msg := fmt.Sprintf("%s: upstream %d (kind=%s)", e.Operation, e.Status, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap exposes the sentinel for errors.Is.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Retryable reports whether resending the same request may succeed.
func (e *UpstreamError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindUpstream
}

func newUpstreamError(operation string, resp *http.Response, body []byte) *UpstreamError {
	kind, cause := classify(resp.StatusCode)
	return &UpstreamError{
		Operation:  operation,
		Kind:       kind,
		Status:     resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		Message:    errorMessage(body),
		cause:      cause,
	}
}

func classify(status int) (Kind, error) {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound, ErrNotFound
	case status == http.StatusForbidden:
		return KindForbidden, ErrForbidden
	case status == http.StatusTooManyRequests:
		return KindRateLimited, ErrRateLimited
	case status >= 400 && status < 500:
		return KindInvalid, ErrInvalidRequest
	default:
		return KindUpstream, ErrUpstream
	}
}

// errorMessage pulls a human readable message out of common JSON error shapes.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error.message", "detail", "title", "error_description", "error"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now).Truncate(time.Second)
	}
	return 0
}
