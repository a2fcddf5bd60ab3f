package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeConflict, 409},
		{ErrCodeValidation, 422},
		{ErrCodeFeedFetchFailed, 502},
		{ErrCodeFeedNotReady, 503},
		{ErrCodeSessionNotFound, 404},
		{ErrCodeSessionClosed, 410},
		{ErrCodeSessionLimitExceeded, 429},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), tt.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "failed to fetch portfolio data", DefaultMessageForCode(ErrCodeFeedFetchFailed))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.True(t, IsClientError(ErrCodeEventInvalid))
	assert.False(t, IsClientError(ErrCodeInternal))
	assert.False(t, IsClientError(ErrCodeFeedBadStatus))
}

func TestIsFetchError(t *testing.T) {
	assert.True(t, IsFetchError(New(ErrCodeFeedFetchFailed, "dial")))
	assert.True(t, IsFetchError(Wrap(New(ErrCodeFeedBadStatus, "404"), ErrCodeInternal, "load")))
	assert.False(t, IsFetchError(New(ErrCodeFeedParseError, "row 3")))
	assert.False(t, IsFetchError(nil))
}

func TestRegistry_CodesFollowConvention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code, info := range registry {
		assert.Regexp(t, re, code.String())
		assert.NotEmpty(t, info.message, code)
		assert.GreaterOrEqual(t, info.status, 400, code)
	}
}

//Personal.AI order the ending
