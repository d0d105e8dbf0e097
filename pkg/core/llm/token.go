package llm

import (
	"encoding/json"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hatchet-dev/pickaxe/pkg/core/message"
)

// TokenCounter 定义 Token 计数接口。
type TokenCounter interface {
	// Count 返回给定文本的 Token 数量。
	Count(text string) int

	// CountMessages 返回消息列表的总 Token 数量，
	// 包括角色前缀和分隔符。
	CountMessages(messages []message.Message) int
}

// TiktokenCounter 使用 tiktoken 实现精确的 Token 计数。
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

// NewTiktokenCounter 创建新的 TiktokenCounter。
// 模型未知时降级到 cl100k_base 编码。
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	if model == "" {
		model = "gpt-4o"
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	return &TiktokenCounter{encoding: encoding, model: model}, nil
}

// Count 返回给定文本的 Token 数量。
func (c *TiktokenCounter) Count(text string) int {
	if c.encoding == nil {
		return estimateTokens(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages 返回消息列表的总 Token 数量。
// 计数规则参考 https://cookbook.openai.com/examples/how_to_count_tokens_with_tiktoken
func (c *TiktokenCounter) CountMessages(messages []message.Message) int {
	return countMessages(c, messages, 3)
}

// EstimatedCounter 使用字符估算实现 Token 计数。
// 这是当 tiktoken 不可用时的降级方案。
type EstimatedCounter struct {
	// CharsPerToken 是每个 Token 的平均字符数，默认 4。
	CharsPerToken float64
}

// NewEstimatedCounter 创建新的 EstimatedCounter。
func NewEstimatedCounter() *EstimatedCounter {
	return &EstimatedCounter{CharsPerToken: 4.0}
}

// Count 返回估算的 Token 数量。
func (c *EstimatedCounter) Count(text string) int {
	perToken := c.CharsPerToken
	if perToken <= 0 {
		perToken = 4.0
	}
	return int(float64(len(text)) / perToken)
}

// CountMessages 返回消息列表的估算 Token 数量。
func (c *EstimatedCounter) CountMessages(messages []message.Message) int {
	return countMessages(c, messages, 4)
}

func countMessages(c TokenCounter, messages []message.Message, perMessage int) int {
	total := 0
	for _, msg := range messages {
		total += perMessage
		total += c.Count(string(msg.Role))
		total += c.Count(msg.Content)
		if msg.Name != "" {
			total += c.Count(msg.Name) + 1
		}
		for _, tc := range msg.ToolCalls {
			total += c.Count(tc.Name) + c.Count(string(tc.ArgumentsJSON()))
		}
	}
	// 回复引导 <|start|>assistant<|message|>
	return total + 3
}

// CountRequest 估算一次请求的提示 Token 数（消息 + 工具定义）
func CountRequest(c TokenCounter, req Request) int {
	total := c.CountMessages(req.Messages)
	for _, tool := range req.Tools {
		total += c.Count(tool.Name) + c.Count(tool.Description)
		if params, err := json.Marshal(tool.Parameters); err == nil {
			total += c.Count(string(params))
		}
	}
	return total
}

// estimateTokens 粗略估算：取字符估算和词估算的平均值
func estimateTokens(text string) int {
	charCount := len(text)
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return charCount / 4
	}
	return (charCount/4 + int(float64(wordCount)*1.3)) / 2
}

// DefaultTokenCounter 返回一个 TokenCounter，
// 优先使用 TiktokenCounter，如果不可用则降级到 EstimatedCounter。
func DefaultTokenCounter(model string) TokenCounter {
	counter, err := NewTiktokenCounter(model)
	if err != nil {
		return NewEstimatedCounter()
	}
	return counter
}

// 编译时接口检查
var _ TokenCounter = (*TiktokenCounter)(nil)
var _ TokenCounter = (*EstimatedCounter)(nil)
