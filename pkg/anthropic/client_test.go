package anthropic

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/caselens/entity-cli/internal/resilience"
)

func TestFromSDKMessage(t *testing.T) {
	msg := &sdk.Message{
		ID:    "msg_1",
		Model: "claude-haiku-4-5-20251001",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "hello "},
			{Type: "text", Text: "world"},
			{Type: "tool_use"},
		},
	}
	msg.Usage.InputTokens = 10
	msg.Usage.OutputTokens = 5

	resp := fromSDKMessage(msg)
	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "hello world", resp.Text, "non-text blocks are ignored")
	assert.EqualValues(t, 10, resp.Usage.InputTokens)
	assert.EqualValues(t, 5, resp.Usage.OutputTokens)
}

// sdkErr builds an API error with the Request/Response fields populated,
// since the SDK's Error() dereferences them unconditionally.
func sdkErr(status int) *sdk.Error {
	return &sdk.Error{
		StatusCode: status,
		Request:    &http.Request{Method: "POST", URL: &url.URL{}},
		Response:   &http.Response{StatusCode: status},
	}
}

func TestClassifySDKError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limited", sdkErr(429), true},
		{"overloaded", sdkErr(529), true},
		{"server error", sdkErr(500), true},
		{"bad request", sdkErr(400), false},
		{"unauthorized", sdkErr(401), false},
		{"not an api error", fmt.Errorf("parse failure"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifySDKError(tt.err)
			assert.Equal(t, tt.retryable, resilience.IsTransient(classified))
		})
	}
}

func TestClassifySDKError_WrappedAPIError(t *testing.T) {
	wrapped := fmt.Errorf("create message: %w", &sdk.Error{StatusCode: 503})
	assert.True(t, resilience.IsTransient(classifySDKError(wrapped)))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("key", Options{})
	sc, ok := c.(*sdkClient)
	assert.True(t, ok)
	assert.EqualValues(t, 2, sc.limiter.Limit())
	assert.Equal(t, 3, sc.retry.MaxAttempts)

	c = NewClient("key", Options{RequestsPerSec: 5, MaxRetries: 7})
	sc = c.(*sdkClient)
	assert.EqualValues(t, 5, sc.limiter.Limit())
	assert.Equal(t, 7, sc.retry.MaxAttempts)
}
