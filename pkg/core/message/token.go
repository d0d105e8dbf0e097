package message

// TokenUsage 模型调用的 Token 用量
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add 累加一次调用的用量
//
// 部分兼容 OpenAI 的服务不返回 total_tokens，此时按输入加输出计算。
func (t *TokenUsage) Add(other TokenUsage) {
	total := other.TotalTokens
	if total == 0 {
		total = other.PromptTokens + other.CompletionTokens
	}
	t.PromptTokens += other.PromptTokens
	t.CompletionTokens += other.CompletionTokens
	t.TotalTokens += total
}

// IsEmpty 没有记录到任何用量
func (t TokenUsage) IsEmpty() bool {
	return t.PromptTokens == 0 && t.CompletionTokens == 0 && t.TotalTokens == 0
}
