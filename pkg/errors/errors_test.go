package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusInternalServerError, ErrorTypeServerError},
		{http.StatusServiceUnavailable, ErrorTypeServerError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.status))
		})
	}
}

func TestFromResponse(t *testing.T) {
	t.Run("twitter error envelope", func(t *testing.T) {
		body := []byte(`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`)
		err := FromResponse(http.StatusUnauthorized, body)

		assert.Equal(t, ErrorTypeAuth, err.Type)
		assert.Equal(t, 401, err.Code)
		assert.Equal(t, 89, err.APICode)
		assert.Equal(t, "Invalid or expired token.", err.Message)
		assert.Equal(t, "twitter auth error (code 401, api code 89): Invalid or expired token.", err.Error())
	})

	t.Run("multiple messages are joined", func(t *testing.T) {
		body := []byte(`{"errors":[{"code":144,"message":"No status found"},{"code":34,"message":"Sorry"}]}`)
		err := FromResponse(http.StatusNotFound, body)

		assert.Equal(t, ErrorTypeNotFound, err.Type)
		assert.Equal(t, 144, err.APICode)
		assert.Equal(t, "No status found; Sorry", err.Message)
	})

	t.Run("plain error field", func(t *testing.T) {
		err := FromResponse(http.StatusUnauthorized, []byte(`{"error":"Not authorized."}`))
		assert.Equal(t, "Not authorized.", err.Message)
		assert.Zero(t, err.APICode)
	})

	t.Run("non json body falls back to default message", func(t *testing.T) {
		err := FromResponse(http.StatusTooManyRequests, []byte("<html>slow down</html>"))
		assert.Equal(t, ErrorTypeRateLimit, err.Type)
		assert.Equal(t, "rate limit exceeded", err.Message)
		assert.Equal(t, "twitter rate_limit error (code 429): rate limit exceeded", err.Error())
	})
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("fetch favorites: %w", &Error{Type: ErrorTypeRateLimit, Code: 429})

	assert.True(t, IsType(wrapped, ErrorTypeRateLimit))
	assert.False(t, IsType(wrapped, ErrorTypeAuth))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeRateLimit))
	assert.False(t, IsType(nil, ErrorTypeRateLimit))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitCredentials, ExitCode(fmt.Errorf("login: %w", ErrMissingCredentials)))
	assert.Equal(t, ExitCredentials, ExitCode(&Error{Type: ErrorTypeAuth, Code: 401}))
	assert.Equal(t, ExitFailure, ExitCode(&Error{Type: ErrorTypeServerError, Code: 503}))
	assert.Equal(t, ExitFailure, ExitCode(stderrors.New("boom")))
}
