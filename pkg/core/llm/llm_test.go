package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/message"
)

func newTestServer(t *testing.T, status int, body string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_GenerateToolCalls(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := newTestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"tool_calls": [
					{"id": "call_1", "type": "function", "function": {"name": "time", "arguments": "{\"city\":\"Tokyo\"}"}},
					{"id": "call_2", "type": "function", "function": {"name": "weather", "arguments": ""}}
				]
			}
		}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
	}`, &seen)

	client, err := NewOpenAI(WithAPIKey("sk-test"), WithBaseURL(srv.URL), WithMaxRetries(0))
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), NewRequest(
		[]message.Message{message.NewUserMessage("What time is it in Tokyo?")},
		WithTools([]ToolDefinition{{Name: "time", Description: "current time", Parameters: map[string]interface{}{"type": "object"}}}),
		WithRequestToolChoice(ToolChoiceRequired),
	))
	require.NoError(t, err)

	require.True(t, resp.HasToolCalls())
	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "time", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"city":"Tokyo"}`, string(resp.ToolCalls[0].Arguments))
	assert.JSONEq(t, `{}`, string(resp.ToolCalls[1].Arguments))
	assert.Equal(t, 17, resp.TokenUsage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	require.Len(t, seen.Tools, 1)
	assert.Equal(t, "time", seen.Tools[0].Function.Name)
	assert.Equal(t, ToolChoiceRequired, seen.ToolChoice)
}

func TestOpenAI_MalformedArguments(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"choices": [{"message": {"role": "assistant", "tool_calls": [
			{"id": "call_1", "type": "function", "function": {"name": "time", "arguments": "{city:"}}
		]}}]
	}`, nil)

	client, err := NewOpenAI(WithAPIKey("sk-test"), WithBaseURL(srv.URL), WithMaxRetries(0))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{Messages: []message.Message{message.NewUserMessage("x")}})
	assert.ErrorIs(t, err, errors.ErrInvalidResponse)
}

func TestOpenAI_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, errors.ErrInvalidAPIKey},
		{http.StatusTooManyRequests, errors.ErrRateLimited},
		{http.StatusServiceUnavailable, errors.ErrProviderUnavailable},
		{http.StatusNotFound, errors.ErrModelNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newTestServer(t, tt.status, `{"error":{"message":"nope","type":"test"}}`, nil)
			client, err := NewOpenAI(WithAPIKey("sk-test"), WithBaseURL(srv.URL), WithMaxRetries(0))
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), Request{Messages: []message.Message{message.NewUserMessage("x")}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI()
	assert.ErrorIs(t, err, errors.ErrInvalidAPIKey)
}

func TestFallbackProvider(t *testing.T) {
	primary := NewMockProvider().ThenError(errors.ErrProviderUnavailable)
	backup := NewMockProvider(Response{Content: "from backup"})

	f := NewFallbackProvider(primary, []Provider{backup})
	resp, err := f.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "from backup", resp.Content)
	assert.Equal(t, "fallback(mock)", f.Name())
	assert.Equal(t, 1, primary.CallCount())
}

func TestFallbackProvider_InvalidResponseStops(t *testing.T) {
	primary := NewMockProvider().ThenError(errors.ErrInvalidResponse)
	backup := NewMockProvider(Response{Content: "unused"})

	_, err := NewFallbackProvider(primary, []Provider{backup}).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, errors.ErrInvalidResponse)
	assert.Zero(t, backup.CallCount())
}

func TestFallbackProvider_AllFail(t *testing.T) {
	boom := stderrors.New("boom")
	f := NewFallbackProvider(NewMockProvider().ThenError(boom), []Provider{NewMockProvider().ThenError(boom)})
	_, err := f.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(config.LLMConfig{Provider: config.ProviderDeepSeek, APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, "deepseek-chat", p.Model())

	p, err = FromConfig(config.LLMConfig{
		APIKey:   "sk",
		Fallback: &config.LLMConfig{Provider: config.ProviderDeepSeek, APIKey: "sk2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback(openai)", p.Name())

	_, err = FromConfig(config.LLMConfig{Provider: "qwen", APIKey: "sk"})
	assert.ErrorIs(t, err, config.ErrInvalidProvider)
}

func TestMockProvider_Script(t *testing.T) {
	m := NewMockProvider(ToolCallResponse(MockCall{Name: "time", Args: map[string]string{"city": "Tokyo"}}))

	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"city":"Tokyo"}`, string(resp.ToolCalls[0].Arguments))

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, resp.HasToolCalls())
	assert.Equal(t, 2, m.CallCount())
}

func TestEstimatedCounter(t *testing.T) {
	c := NewEstimatedCounter()
	assert.Equal(t, 2, c.Count("abcdefgh"))

	msgs := []message.Message{message.NewUserMessage("abcdefgh")}
	base := c.CountMessages(msgs)
	assert.Equal(t, 4+c.Count("user")+2+3, base)

	withTools := CountRequest(c, Request{
		Messages: msgs,
		Tools:    []ToolDefinition{{Name: "weather", Description: "weather by city", Parameters: map[string]interface{}{"type": "object"}}},
	})
	assert.Greater(t, withTools, base)
}
