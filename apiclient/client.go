package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bonsai-platform/apikit/logger"
)

const headerRequestID = "X-Request-Id"

// Client executes API calls against one base URL with retries,
// credential refresh, and error classification. It is safe for
// concurrent use; the only shared mutable state is the auth
// strategy's credential slot.
type Client struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
	tracer     trace.Tracer
}

// Option configures a Client beyond its Config.
type Option func(*Client)

// WithTransport replaces the underlying HTTP transport. Useful for
// tests and custom TLS or proxy setups.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithLogger replaces the default logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Timeouts are applied per attempt via context, not on the
	// http.Client, so per-call overrides work.
	c := &Client{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		config: cfg,
		log:    logger.Default().WithComponent("apiclient"),
		tracer: otel.Tracer("github.com/bonsai-platform/apikit/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle transport resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Do executes one logical call: it merges headers, attaches auth,
// runs up to Retries+1 attempts with jittered backoff on transport
// failures, performs at most one forced credential refresh on a 401,
// classifies unexpected statuses, and decodes the body.
//
// Attempts within a call are strictly sequential. Only transport-level
// failures are retried; 4xx/5xx responses are surfaced immediately,
// except the single in-place 401 retry.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// Materialize the body once so retried attempts can replay it.
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &Error{
			Kind:    KindClient,
			Message: fmt.Sprintf("encode body: %v", err),
			Err:     err,
		}
	}

	apiURL := c.resolveURL(req.Path)

	// Default headers, then per-call headers, then auth headers.
	headers := make(map[string]string, len(c.config.Headers)+len(req.Headers)+2)
	for k, v := range c.config.Headers {
		headers[k] = v
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	if _, ok := headers[headerRequestID]; !ok {
		headers[headerRequestID] = uuid.NewString()
	}
	c.mergeAuthHeaders(ctx, headers)

	expected := req.ExpectedStatuses
	if len(expected) == 0 {
		expected = []int{defaultExpectedStatus(req.Method)}
	}

	log := c.log.WithFields(map[string]any{
		logger.FieldMethod:    req.Method,
		logger.FieldPath:      req.Path,
		logger.FieldRequestID: headers[headerRequestID],
	})

	ctx, span := c.tracer.Start(ctx, "apiclient.Do",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", apiURL),
		))
	defer span.End()

	attempts := c.config.Retries + 1
	didForceRefresh := false
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		log.Info("request", map[string]any{logger.FieldAttempt: attempt})
		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("attempt", attempt)))

		resp, err := c.roundTrip(ctx, req, apiURL, headers, body, contentType)

		// One forced credential refresh per call, then re-issue the
		// same attempt in place. The retry does not consume a slot.
		if err == nil && resp.StatusCode == http.StatusUnauthorized &&
			c.config.Auth != nil && !didForceRefresh {
			log.Warn("401 received, forcing credential refresh")
			changed, rerr := c.config.Auth.ForceRefresh(ctx)
			if rerr != nil {
				aerr := NewAuthenticationError(rerr)
				span.RecordError(aerr)
				span.SetStatus(codes.Error, aerr.Message)
				return nil, aerr
			}
			didForceRefresh = true
			if changed {
				c.mergeAuthHeaders(ctx, headers)
			}
			resp, err = c.roundTrip(ctx, req, apiURL, headers, body, contentType)
		}

		if err != nil {
			if !IsNetwork(err) {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			lastErr = err
			log.Debug("attempt failed", map[string]any{
				logger.FieldAttempt: attempt,
				logger.FieldError:   err.Error(),
			})
			if ctx.Err() != nil {
				// Caller is gone; retrying cannot succeed.
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			if attempt < attempts {
				if serr := c.sleepBackoff(ctx, attempt); serr != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					return nil, err
				}
			}
			continue
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if !containsStatus(expected, resp.StatusCode) {
			cerr := Classify(resp.StatusCode, resp.Body)
			log.Warn("unexpected status", map[string]any{
				logger.FieldStatus: resp.StatusCode,
			})
			span.RecordError(cerr)
			span.SetStatus(codes.Error, cerr.Message)
			return resp, cerr
		}

		if derr := resp.decode(); derr != nil {
			span.RecordError(derr)
			span.SetStatus(codes.Error, derr.Error())
			return resp, derr
		}
		log.Debug("request succeeded", map[string]any{
			logger.FieldAttempt: attempt,
			logger.FieldStatus:  resp.StatusCode,
		})
		return resp, nil
	}

	err = NewExhaustedError(req.Method, apiURL, lastErr)
	log.Error("request exhausted all attempts", map[string]any{
		logger.FieldError: err.Error(),
	})
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// roundTrip performs a single transport attempt.
func (c *Client) roundTrip(ctx context.Context, req Request, apiURL string, headers map[string]string, body []byte, contentType string) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, apiURL, reader)
	if err != nil {
		return nil, &Error{
			Kind:    KindClient,
			Message: fmt.Sprintf("create request: %v", err),
			Err:     err,
		}
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if attemptCtx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       b,
	}, nil
}

// mergeAuthHeaders overlays the auth strategy's headers. Header
// attachment is best effort: a failing strategy is logged and the
// call proceeds unauthenticated.
func (c *Client) mergeAuthHeaders(ctx context.Context, headers map[string]string) {
	if c.config.Auth == nil {
		return
	}
	ah, err := c.config.Auth.Headers(ctx)
	if err != nil {
		c.log.Warn("auth header generation failed, proceeding unauthenticated", map[string]any{
			logger.FieldError: err.Error(),
		})
		return
	}
	for k, v := range ah {
		headers[k] = v
	}
}

// resolveURL joins a relative path to the base URL. Full URLs pass
// through untouched.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// backoffDelay returns a uniformly random delay in
// [0, min(MaxBackoff, Backoff*2^(attempt-1))]. Randomizing from zero
// desynchronizes concurrent retrying callers.
func (c *Client) backoffDelay(attempt int) time.Duration {
	bound := float64(c.config.Backoff) * math.Pow(2, float64(attempt-1))
	if m := float64(c.config.MaxBackoff); bound > m {
		bound = m
	}
	return time.Duration(rand.Float64() * bound)
}

// sleepBackoff waits out the jittered backoff, aborting early when the
// caller's context ends.
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoffDelay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
