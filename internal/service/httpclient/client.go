// Package httpclient sends requests described by contract routes to a backend
// service and decodes the typed responses.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/janisto/huma-shared-libs/internal/platform/contract"
	"github.com/janisto/huma-shared-libs/internal/platform/headers"
	applog "github.com/janisto/huma-shared-libs/internal/platform/logging"
	"github.com/janisto/huma-shared-libs/internal/platform/schema"
	"github.com/janisto/huma-shared-libs/internal/platform/strutil"
)

const (
	defaultMaxRetries      = 2
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxRetryWait    = 5 * time.Second
	maxBodyBytes           = 1 << 20
	maxLoggedMessage       = 256
)

// Client sends contract requests to a single backend.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	headers         *headers.Builder
	maxRetries      uint64
	initialInterval time.Duration
	maxRetryWait    time.Duration
	validate        bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the backend root, e.g. "https://items.internal".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHeaders sets headers resolved for every request.
func WithHeaders(b *headers.Builder) Option {
	return func(c *Client) {
		c.headers = b
	}
}

// WithRetry sets how often transport failures, 5xx and 429 responses are
// retried and the first backoff interval. maxRetries 0 disables retries.
func WithRetry(maxRetries int, initialInterval time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = uint64(max(maxRetries, 0))
		if initialInterval > 0 {
			c.initialInterval = initialInterval
		}
	}
}

// WithMaxRetryWait caps how long the client honors an upstream Retry-After
// before retrying. A rate-limited response asking for a longer wait is
// returned to the caller without further attempts.
func WithMaxRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.maxRetryWait = max(d, 0)
	}
}

// WithResponseValidation validates 2xx bodies against the response schema
// before decoding.
func WithResponseValidation(enabled bool) Option {
	return func(c *Client) {
		c.validate = enabled
	}
}

// NewClient returns a client using httpClient for transport.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:      httpClient,
		headers:         headers.New(nil).With(headers.JSON()),
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
		maxRetryWait:    defaultMaxRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request holds the typed parts of one call.
type Request[P, Q, B any] struct {
	Params  P
	Query   Q
	Body    B
	Headers *headers.Builder
}

// Response is a decoded 2xx response.
type Response[R any] struct {
	Status int
	Header http.Header
	Body   R
}

// Send executes route against the client's backend.
func Send[P, Q, B, R any](
	ctx context.Context,
	c *Client,
	route contract.Route[P, Q, B, R],
	req Request[P, Q, B],
) (*Response[R], error) {
	target, err := buildURL(c.baseURL, route, req)
	if err != nil {
		return nil, err
	}

	hs, err := c.headers.Merge(req.Headers).Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: resolving headers: %w", route.OperationID, err)
	}

	var payload []byte
	if route.HasBody() {
		if payload, err = json.Marshal(req.Body); err != nil {
			return nil, fmt.Errorf("%s: encoding body: %w", route.OperationID, err)
		}
	}

	status, header, body, err := c.do(ctx, route.OperationID, route.Method, target, hs, payload)
	if err != nil {
		return nil, err
	}

	out := &Response[R]{Status: status, Header: header}
	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if out.Body, err = decode[R](body, c.validate); err != nil {
		applog.LogWarn(ctx, "upstream response rejected",
			zap.String("operation", route.OperationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", route.OperationID, err)
	}
	return out, nil
}

func buildURL[P, Q, B, R any](base string, route contract.Route[P, Q, B, R], req Request[P, Q, B]) (string, error) {
	path, err := route.BuildPath(req.Params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", route.OperationID, err)
	}
	query, err := route.BuildQuery(req.Query)
	if err != nil {
		return "", fmt.Errorf("%s: %w", route.OperationID, err)
	}
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

// do sends the request, retrying transport failures and retryable upstream
// statuses with exponential backoff. A Retry-After from the upstream stretches
// the next wait. It returns the 2xx status, headers and body.
func (c *Client) do(
	ctx context.Context,
	operation, method, target string,
	hs headers.Headers,
	payload []byte,
) (int, http.Header, []byte, error) {
	var (
		status  int
		header  http.Header
		body       []byte
		attempt    int
		retryAfter time.Duration
	)

	send := func() error {
		attempt++
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%s: creating request: %w", operation, err))
		}
		hs.Apply(req.Header)
		if payload == nil {
			req.Header.Del("Content-Type")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%s: sending request: %w", operation, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("%s: reading response: %w", operation, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			status, header, body = resp.StatusCode, resp.Header, data
			return nil
		}

		upstreamErr := newUpstreamError(operation, resp, data)
		logUpstreamFailure(ctx, upstreamErr, attempt)
		if !upstreamErr.Retryable() || upstreamErr.RetryAfter > c.maxRetryWait {
			return backoff.Permanent(upstreamErr)
		}
		retryAfter = upstreamErr.RetryAfter
		return upstreamErr
	}

	if err := backoff.Retry(send, c.backoff(ctx, &retryAfter)); err != nil {
		return 0, nil, nil, err
	}
	return status, header, body, nil
}

func (c *Client) backoff(ctx context.Context, retryAfter *time.Duration) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(&retryAfterBackOff{
		BackOff:    backoff.WithMaxRetries(exp, c.maxRetries),
		retryAfter: retryAfter,
	}, ctx)
}

// retryAfterBackOff waits at least the upstream's last Retry-After. The hint
// is consumed by the next call.
type retryAfterBackOff struct {
	backoff.BackOff
	retryAfter *time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	hint := *b.retryAfter
	*b.retryAfter = 0
	if next == backoff.Stop {
		return backoff.Stop
	}
	return max(next, hint)
}

func decode[R any](body []byte, validate bool) (R, error) {
	if validate {
		v, err := schema.ForResponse[R]().ParseJSON(body)
		if err != nil {
			return v, fmt.Errorf("%w: %w", ErrResponseValidation, err)
		}
		return v, nil
	}
	var v R
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}

func logUpstreamFailure(ctx context.Context, e *UpstreamError, attempt int) {
	fields := []zap.Field{
		zap.String("operation", e.Operation),
		zap.Int("status", e.Status),
		zap.String("kind", string(e.Kind)),
		zap.Int("attempt", attempt),
	}
	if e.Message != "" {
		fields = append(fields, zap.String("upstream_message", strutil.Truncate(e.Message, maxLoggedMessage)))
	}
	if e.RetryAfter > 0 {
		fields = append(fields, zap.Duration("retry_after", e.RetryAfter))
	}
	if e.Kind == KindUpstream {
		applog.LogError(ctx, "upstream request failed", errors.Unwrap(e), fields...)
		return
	}
	applog.LogWarn(ctx, "upstream request failed", fields...)
}
