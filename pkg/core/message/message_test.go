package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		err  error
	}{
		{"user ok", NewUserMessage("hi"), nil},
		{"empty user", NewUserMessage(""), ErrEmptyContent},
		{"bad role", Message{Role: "robot", Content: "x"}, ErrInvalidRole},
		{"assistant tool calls", NewAssistantToolCallMessage([]ToolCall{{ID: "1", Name: "time"}}), nil},
		{"assistant empty", NewMessage(RoleAssistant, ""), ErrEmptyContent},
		{"tool without id", Message{Role: RoleTool, Content: "ok"}, ErrMissingToolCallID},
		{"tool ok", NewToolMessage("call_1", "time", "ok"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestToolCallArgumentsJSON(t *testing.T) {
	assert.JSONEq(t, `{}`, string(ToolCall{Name: "time"}.ArgumentsJSON()))
	assert.JSONEq(t, `{"city":"Tokyo"}`, string(ToolCall{Arguments: []byte(`{"city":"Tokyo"}`)}.ArgumentsJSON()))
}

func TestTokenUsageAdd(t *testing.T) {
	u := TokenUsage{}
	assert.True(t, u.IsEmpty())
	u.Add(TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5})
	u.Add(TokenUsage{PromptTokens: 1, TotalTokens: 1})
	assert.Equal(t, TokenUsage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, u)

	// 缺少 total_tokens 时按输入加输出计算
	u.Add(TokenUsage{PromptTokens: 2, CompletionTokens: 1})
	assert.Equal(t, 9, u.TotalTokens)
	assert.False(t, u.IsEmpty())
}

func TestValidateHistory(t *testing.T) {
	calls := []ToolCall{{ID: "call_1", Name: "weather"}, {ID: "call_2", Name: "time"}}

	tests := []struct {
		name  string
		msgs  []Message
		err   error
		index int
	}{
		{"prompt only", []Message{NewSystemMessage("pick"), NewUserMessage("hi")}, nil, 0},
		{"answered calls", []Message{
			NewUserMessage("hi"),
			NewAssistantToolCallMessage(calls),
			NewToolMessage("call_1", "weather", "ok"),
			NewToolMessage("call_2", "time", "ok"),
		}, nil, 0},
		{"ids reused by a later step", []Message{
			NewUserMessage("hi"),
			NewAssistantToolCallMessage(calls[:1]),
			NewToolMessage("call_1", "weather", "ok"),
			NewAssistantToolCallMessage(calls[:1]),
			NewToolMessage("call_1", "weather", "ok"),
		}, nil, 0},
		{"empty user", []Message{NewUserMessage("")}, ErrEmptyContent, 0},
		{"call without id", []Message{
			NewUserMessage("hi"),
			NewAssistantToolCallMessage([]ToolCall{{Name: "time"}}),
		}, ErrMissingToolCallID, 1},
		{"orphan tool message", []Message{
			NewUserMessage("hi"),
			NewToolMessage("call_9", "time", "ok"),
		}, ErrUnansweredToolCall, 1},
		{"answered twice", []Message{
			NewUserMessage("hi"),
			NewAssistantToolCallMessage(calls[:1]),
			NewToolMessage("call_1", "weather", "ok"),
			NewToolMessage("call_1", "weather", "ok"),
		}, ErrUnansweredToolCall, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistory(tt.msgs)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
			var he *HistoryError
			if assert.ErrorAs(t, err, &he) {
				assert.Equal(t, tt.index, he.Index)
			}
		})
	}
}
