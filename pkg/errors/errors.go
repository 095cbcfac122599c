package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Exit codes used by the CLI
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitCredentials = 2
)

// ErrMissingCredentials is returned when no complete credential set is available
var ErrMissingCredentials = stderrors.New("missing Twitter credentials")

// Error represents a Twitter API error with type information
type Error struct {
	Type    ErrorType
	Message string
	// Code is the HTTP status, 0 for transport failures
	Code int
	// APICode is the first code of the Twitter error envelope, if any
	APICode int
}

func (e *Error) Error() string {
	if e.APICode != 0 {
		return fmt.Sprintf("twitter %s error (code %d, api code %d): %s", e.Type, e.Code, e.APICode, e.Message)
	}
	return fmt.Sprintf("twitter %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// apiErrorEnvelope is the body Twitter sends with non-2xx responses
type apiErrorEnvelope struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

// TypeForStatus maps an HTTP status code to an ErrorType
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// FromResponse builds an Error from a failed response status and body
func FromResponse(statusCode int, body []byte) *Error {
	e := &Error{
		Type:    TypeForStatus(statusCode),
		Message: defaultMessage(statusCode),
		Code:    statusCode,
	}

	var env apiErrorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return e
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, apiErr := range env.Errors {
			msgs = append(msgs, apiErr.Message)
		}
		e.Message = strings.Join(msgs, "; ")
		e.APICode = env.Errors[0].Code
	} else if env.Error != "" {
		e.Message = env.Error
	}

	return e
}

func defaultMessage(statusCode int) string {
	switch TypeForStatus(statusCode) {
	case ErrorTypeAuth:
		return "authentication failed"
	case ErrorTypeNotFound:
		return "resource not found"
	case ErrorTypeRateLimit:
		return "rate limit exceeded"
	case ErrorTypeServerError:
		return "server error"
	default:
		return fmt.Sprintf("unexpected status code: %d", statusCode)
	}
}

// IsType reports whether err wraps an *Error of the given type
func IsType(err error, t ErrorType) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, ErrMissingCredentials), IsType(err, ErrorTypeAuth):
		return ExitCredentials
	default:
		return ExitFailure
	}
}
