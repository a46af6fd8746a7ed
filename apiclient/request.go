package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one logical API call.
type Request struct {
	// Method is one of GET, POST, PUT, DELETE.
	Method string
	// Path is joined to the client's BaseURL. A full URL is used as-is.
	Path string
	// Headers are per-call headers, merged over the client defaults.
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request payload. Accepts nil, io.Reader, []byte,
	// string, url.Values (form-encoded), *MultipartBody, or any value
	// that will be JSON-encoded.
	Body any
	// ExpectedStatuses are the acceptable response status codes.
	// Empty means the conventional success code for Method.
	ExpectedStatuses []int
	// Timeout overrides the client's per-attempt timeout when positive.
	Timeout time.Duration
}

// validate rejects methods outside the supported set.
func (r *Request) validate() error {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return nil
	default:
		return &Error{
			Kind:    KindClient,
			Message: fmt.Sprintf("unsupported method %q", r.Method),
		}
	}
}

// defaultExpectedStatus returns the conventional success code for a
// method, used when the caller supplies no expected set.
func defaultExpectedStatus(method string) int {
	switch method {
	case http.MethodPost:
		return http.StatusCreated
	case http.MethodDelete:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// Response is the result of a successful (or at least received) call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, flattened to single values.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
	// Data is the decoded body: nil for empty responses, the
	// unmarshaled value for JSON content types, the body as a string
	// otherwise.
	Data any
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// decode populates Data from the body and content type.
func (r *Response) decode() error {
	if r.StatusCode == http.StatusNoContent || len(r.Body) == 0 {
		return nil
	}
	ct := strings.ToLower(r.Headers["Content-Type"])
	if strings.Contains(ct, "application/json") {
		var v any
		if err := json.Unmarshal(r.Body, &v); err != nil {
			return &Error{
				Kind:       KindClient,
				StatusCode: r.StatusCode,
				Message:    fmt.Sprintf("decode response: %v", err),
				Body:       r.Body,
				Err:        err,
			}
		}
		r.Data = v
		return nil
	}
	r.Data = string(r.Body)
	return nil
}

// encodeBody converts a body value into raw bytes and a content type.
// Bodies are materialized up front so retried attempts can replay them.
func encodeBody(body any) ([]byte, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	case []byte:
		return v, "", nil
	case string:
		return []byte(v), "text/plain", nil
	case url.Values:
		return []byte(v.Encode()), "application/x-www-form-urlencoded", nil
	case *MultipartBody:
		return v.encode()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

func containsStatus(statuses []int, code int) bool {
	for _, s := range statuses {
		if s == code {
			return true
		}
	}
	return false
}
