// File: lovedu_client/internal/errors/errorHandlers.go

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeNetwork             ErrorType = "NETWORK"
	ErrorTypeMalformedResponse   ErrorType = "MALFORMED_RESPONSE"
	ErrorTypeBadRequest          ErrorType = "BAD_REQUEST"
	ErrorTypeUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden           ErrorType = "FORBIDDEN"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeConflict            ErrorType = "CONFLICT"
	ErrorTypeRateLimited         ErrorType = "RATE_LIMITED"
	ErrorTypeInternalServerError ErrorType = "INTERNAL_SERVER_ERROR"
	ErrorTypeServiceUnavailable  ErrorType = "SERVICE_UNAVAILABLE"
	ErrorTypeHTTP                ErrorType = "HTTP_ERROR"
	ErrorTypeValidation          ErrorType = "VALIDATION"
)

// Outcome tells how a failed response body was interpreted.
type Outcome int

const (
	// OutcomeNone is used for failures that never produced a response (network, validation).
	OutcomeNone Outcome = iota
	// OutcomeStructured means the body was JSON and the message came from one of its fields.
	OutcomeStructured
	// OutcomeOpaque means the body was empty, HTML, or otherwise unparseable.
	OutcomeOpaque
)

// MaxRawBody is how much of an unparseable body is kept on the error.
const MaxRawBody = 500

// CustomError represents a custom error with associated HTTP status code and type
type CustomError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Outcome    Outcome
	RawBody    string
	Internal   error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Internal
}

// newError creates a new CustomError
func newError(errType ErrorType, message string, statusCode int, internal error) *CustomError {
	return &CustomError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// NewNetworkError wraps a transport failure. The message is the transport's own text.
func NewNetworkError(internal error) *CustomError {
	msg := "Network error occurred"
	if internal != nil && internal.Error() != "" {
		msg = internal.Error()
	}
	return newError(ErrorTypeNetwork, msg, 0, internal)
}

// NewMalformedResponseError is returned when a successful response cannot be decoded.
func NewMalformedResponseError(statusCode int, raw string, internal error) *CustomError {
	e := newError(ErrorTypeMalformedResponse, "Unexpected response from server", statusCode, internal)
	e.Outcome = OutcomeOpaque
	e.RawBody = Truncate(raw, MaxRawBody)
	return e
}

// NewValidationError reports a rejection made before any request was sent.
func NewValidationError(message string) *CustomError {
	return newError(ErrorTypeValidation, message, 0, nil)
}

// NewHTTPError builds an error for a non-2xx response.
func NewHTTPError(statusCode int, message string, outcome Outcome, raw string) *CustomError {
	e := newError(TypeForStatus(statusCode), message, statusCode, nil)
	e.Outcome = outcome
	e.RawBody = Truncate(raw, MaxRawBody)
	return e
}

// TypeForStatus maps an HTTP status to an ErrorType.
func TypeForStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusForbidden:
		return ErrorTypeForbidden
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimited
	case http.StatusInternalServerError:
		return ErrorTypeInternalServerError
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorTypeServiceUnavailable
	}
	return ErrorTypeHTTP
}

// StatusLine renders "HTTP 404: Not Found".
func StatusLine(statusCode int) string {
	return fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode))
}

// AsCustomError unwraps err into a *CustomError.
func AsCustomError(err error) (*CustomError, bool) {
	var customErr *CustomError
	if stderrors.As(err, &customErr) {
		return customErr, true
	}
	return nil, false
}

// IsType reports whether err is a CustomError of the given type.
func IsType(err error, errType ErrorType) bool {
	customErr, ok := AsCustomError(err)
	return ok && customErr.Type == errType
}

var invalidTokenPhrases = []string{
	"invalid token",
	"malformed",
	"invalid number of segments",
	"unable to parse",
	"token format",
}

// IsInvalidToken reports whether err is a 401/403 whose text says the bearer token itself is bad,
// as opposed to plain wrong credentials.
func IsInvalidToken(err error) bool {
	customErr, ok := AsCustomError(err)
	if !ok {
		return false
	}
	if customErr.StatusCode != http.StatusUnauthorized && customErr.StatusCode != http.StatusForbidden {
		return false
	}
	msg := strings.ToLower(customErr.Message)
	for _, phrase := range invalidTokenPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
