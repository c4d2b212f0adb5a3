package kb

import "errors"

// Errors raised client-side, before any request is sent.
var (
	// ErrLocalFile is returned when a referenced local file is missing or unreadable.
	ErrLocalFile = errors.New("local file error")
	// ErrValidation is returned when a request parameter fails client-side validation.
	ErrValidation = errors.New("validation error")
	// ErrSchemaMismatch is returned when table rows disagree with the declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Errors classified from the service response status.
var (
	ErrAuthentication = errors.New("authentication rejected")
	ErrNotFound       = errors.New("not found")
	ErrRateLimit      = errors.New("rate limited")
	ErrServer         = errors.New("server error")
)

// ErrTransport is returned when the request never produced an HTTP response.
var ErrTransport = errors.New("transport error")

// ErrMalformedResponse is returned when a success response cannot be parsed
// into its documented shape.
var ErrMalformedResponse = errors.New("malformed response")
