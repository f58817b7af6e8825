package assist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{ErrOther, "other"},
		{ErrTimeout, "timeout"},
		{ErrConnection, "connection"},
		{ErrRateLimited, "rate_limited"},
		{ErrAuth, "auth"},
		{ErrUpstream, "upstream"},
		{ErrInvalidResponse, "invalid_response"},
		{ErrorKind(99), "other"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.kind.String())
		})
	}
}

func TestErrorKind_ZeroValueIsFallback(t *testing.T) {
	var k ErrorKind
	require.Equal(t, ErrOther, k)
}

func TestErrorKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
	}{
		{ErrTimeout, 408},
		{ErrConnection, 503},
		{ErrRateLimited, 429},
		{ErrAuth, 401},
		{ErrUpstream, 502},
		{ErrInvalidResponse, 502},
		{ErrOther, 500},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			require.Equal(t, tc.status, tc.kind.HTTPStatus())
		})
	}
}

func TestClassify_Timeout(t *testing.T) {
	wrapped := fmt.Errorf("calling api: %w", context.DeadlineExceeded)
	require.Equal(t, ErrTimeout, classify(wrapped).Kind)
}

func TestClassify_APIStatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorKind
	}{
		{401, ErrAuth},
		{403, ErrAuth},
		{429, ErrRateLimited},
		{500, ErrUpstream},
		{400, ErrUpstream},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			err := &openai.Error{StatusCode: tc.status}
			require.Equal(t, tc.expected, classify(err).Kind)
		})
	}
}

func TestClassify_ConnectionFailure(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://api.example.com", Err: errors.New("connection refused")}
	require.Equal(t, ErrConnection, classify(err).Kind)
}

func TestClassify_UnknownFallsBackToOther(t *testing.T) {
	require.Equal(t, ErrOther, classify(errors.New("mystery")).Kind)
}

func TestClassify_PreservesExistingAssistError(t *testing.T) {
	original := newError(ErrInvalidResponse, errors.New("bad json"))
	require.Same(t, original, classify(fmt.Errorf("outer: %w", original)))
}

func TestError_UnwrapAndMessage(t *testing.T) {
	inner := errors.New("boom")
	err := newError(ErrUpstream, inner)

	require.ErrorIs(t, err, inner)
	require.Equal(t, "assist: upstream: boom", err.Error())
	require.Equal(t, "Assist API error", err.Kind.UserMessage())
}
