package apiclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies request failures into a closed taxonomy so
// callers can branch on the outcome programmatically.
type ErrorKind int

const (
	// KindBadRequest indicates HTTP 400.
	KindBadRequest ErrorKind = iota
	// KindUnauthorized indicates HTTP 401.
	KindUnauthorized
	// KindForbidden indicates HTTP 403.
	KindForbidden
	// KindNotFound indicates HTTP 404.
	KindNotFound
	// KindConflict indicates HTTP 409.
	KindConflict
	// KindUnprocessableEntity indicates HTTP 422.
	KindUnprocessableEntity
	// KindTooManyRequests indicates HTTP 429.
	KindTooManyRequests
	// KindClient indicates any other 4xx, or a status outside the
	// expected set that has no more specific kind.
	KindClient
	// KindServer indicates any 5xx.
	KindServer
	// KindTimeout indicates a connect or read timeout before a
	// response was received.
	KindTimeout
	// KindConnection indicates a network-level connection failure.
	KindConnection
	// KindExhausted indicates the retry budget was spent without a
	// successful response.
	KindExhausted
	// KindAuthentication indicates no credential could be obtained
	// from the auth subsystem.
	KindAuthentication
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnprocessableEntity:
		return "unprocessable_entity"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindClient:
		return "client_error"
	case KindServer:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection_failed"
	case KindExhausted:
		return "request_exhausted"
	case KindAuthentication:
		return "authentication_failed"
	default:
		return "unknown"
	}
}

// Error is a structured API client error carrying the kind, the HTTP
// status (0 for transport-level failures), and the raw response body
// for diagnostics.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind
	// StatusCode is the HTTP status code, when a response was received.
	StatusCode int
	// Message describes the error.
	Message string
	// Body is the raw response body (may be nil).
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("apiclient: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

var statusKinds = map[int]ErrorKind{
	400: KindBadRequest,
	401: KindUnauthorized,
	403: KindForbidden,
	404: KindNotFound,
	409: KindConflict,
	422: KindUnprocessableEntity,
	429: KindTooManyRequests,
}

// Classify converts an HTTP status code outside the expected set into
// a typed error. The mapping is total and deterministic: named 4xx
// statuses yield their kind, other 4xx yield KindClient, 5xx yields
// KindServer, and anything else (an unexpected 2xx/3xx) yields
// KindClient.
func Classify(status int, body []byte) *Error {
	kind := KindClient
	message := fmt.Sprintf("HTTP %d", status)
	switch {
	case status >= 400 && status < 500:
		if k, ok := statusKinds[status]; ok {
			kind = k
		}
	case status >= 500:
		kind = KindServer
	default:
		message = fmt.Sprintf("unexpected HTTP %d", status)
	}
	return &Error{
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		Body:       body,
	}
}

// NewTimeoutError creates a transport timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection failure error.
func NewConnectionError(err error) *Error {
	return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
}

// NewExhaustedError creates the terminal error returned once all
// attempts for a call failed. It wraps the last transport error.
func NewExhaustedError(method, url string, last error) *Error {
	return &Error{
		Kind:    KindExhausted,
		Message: fmt.Sprintf("request %s %s failed after all attempts", method, url),
		Err:     last,
	}
}

// NewAuthenticationError creates an error for a credential that could
// not be obtained or refreshed.
func NewAuthenticationError(err error) *Error {
	return &Error{Kind: KindAuthentication, Message: "authentication failed", Err: err}
}

// KindOf returns the kind of err, or KindClient with ok=false when err
// is not an apiclient error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindClient, false
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsUnauthorized checks for a 401 classification.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsNotFound checks for a 404 classification.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsTooManyRequests checks for a 429 classification.
func IsTooManyRequests(err error) bool { return isKind(err, KindTooManyRequests) }

// IsServerError checks for a 5xx classification.
func IsServerError(err error) bool { return isKind(err, KindServer) }

// IsTimeout checks for a transport timeout.
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }

// IsConnection checks for a connection-level failure.
func IsConnection(err error) bool { return isKind(err, KindConnection) }

// IsNetwork checks for either transport-level failure family member.
func IsNetwork(err error) bool {
	return isKind(err, KindTimeout) || isKind(err, KindConnection)
}

// IsExhausted checks whether a call spent its whole attempt budget.
func IsExhausted(err error) bool { return isKind(err, KindExhausted) }

// IsAuthentication checks for an auth-subsystem failure.
func IsAuthentication(err error) bool { return isKind(err, KindAuthentication) }
