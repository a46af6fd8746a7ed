package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithQueryParam adds a query parameter to the request.
func WithQueryParam(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// WithExpectedStatuses replaces the acceptable status set.
func WithExpectedStatuses(statuses ...int) RequestOption {
	return func(r *Request) { r.ExpectedStatuses = statuses }
}

// WithTimeout overrides the per-attempt timeout for the request.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = timeout }
}

// Get performs a GET request and decodes the JSON response into T.
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the
// response into T.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the
// response into T.
func Put[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPut, path, body, opts...)
}

// Delete performs a DELETE request and decodes the JSON response into T.
func Delete[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodDelete, path, nil, opts...)
}

// doTyped executes a request and decodes the JSON response body.
func doTyped[T any](c *Client, ctx context.Context, method, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := Request{
		Method: method,
		Path:   path,
		Body:   body,
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		// An error response body may still carry a decodable payload.
		if resp != nil {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &TypedResponse[T]{
					StatusCode: resp.StatusCode,
					Headers:    resp.Headers,
					Data:       data,
				}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, &Error{
				Kind:       KindClient,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("decode response: %v", err),
				Body:       resp.Body,
				Err:        err,
			}
		}
	}

	return &TypedResponse[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}
