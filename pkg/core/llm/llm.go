// Package llm 提供 LLM 服务的统一接口
//
// Pickaxe 只依赖 LLM 的 Function Calling 能力：工具箱把工具定义交给模型，
// 由模型决定调用哪些工具以及参数。
package llm

import (
	"context"

	"github.com/hatchet-dev/pickaxe/pkg/core/message"
)

// Provider 定义 LLM 提供商接口
type Provider interface {
	// Generate 生成响应（非流式）
	//
	// 参数:
	//   - ctx: 上下文
	//   - req: 请求参数
	//
	// 返回:
	//   - Response: 响应结果
	//   - error: 调用错误
	Generate(ctx context.Context, req Request) (Response, error)

	// Name 返回提供商名称
	Name() string

	// Model 返回当前模型名称
	Model() string

	// Close 关闭客户端连接
	Close() error
}

// ToolDefinition 工具定义（用于 Function Calling）
type ToolDefinition struct {
	// Name 工具名称
	Name string `json:"name"`
	// Description 工具描述
	Description string `json:"description"`
	// Parameters 参数 Schema (JSON Schema 格式)
	Parameters map[string]interface{} `json:"parameters"`
}

// ToolChoice 取值
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// Request LLM 请求
type Request struct {
	// Messages 消息历史
	Messages []message.Message
	// Tools 可用工具列表（可选）
	Tools []ToolDefinition
	// ToolChoice 工具选择策略（可选）
	// 值: "auto", "none", "required"
	ToolChoice interface{}
	// Temperature 温度参数（可选）
	Temperature *float64
	// MaxTokens 最大输出 token（可选）
	MaxTokens *int
	// TopP 核采样参数（可选）
	TopP *float64
	// Stop 停止序列（可选）
	Stop []string
}

// Response LLM 响应
type Response struct {
	// ID 响应标识
	ID string `json:"id"`
	// Content 响应文本内容
	Content string `json:"content"`
	// ToolCalls 工具调用请求（如有）
	ToolCalls []message.ToolCall `json:"tool_calls,omitempty"`
	// TokenUsage Token 使用统计
	TokenUsage message.TokenUsage `json:"token_usage"`
	// FinishReason 结束原因
	// 值: "stop", "tool_calls", "length", "content_filter"
	FinishReason string `json:"finish_reason"`
}

// HasToolCalls 检查响应是否包含工具调用
func (r Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
