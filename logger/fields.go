package logger

// Standard field names used across the module.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldAttempt   = "attempt"
	FieldStatus    = "status"
	FieldRequestID = "request_id"
)
