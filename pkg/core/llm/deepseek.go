package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/retry"
)

// DeepSeekClient DeepSeek 客户端
//
// DeepSeek 提供 OpenAI 兼容的 API，基于 OpenAI SDK 实现，支持 Function Calling。
type DeepSeekClient struct {
	client  *openai.Client
	options *Options
}

// NewDeepSeek 创建 DeepSeek 客户端
func NewDeepSeek(opts ...Option) (*DeepSeekClient, error) {
	options := DefaultOptions()
	options.BaseURL = "https://api.deepseek.com/v1"
	options.Model = "deepseek-chat"

	for _, opt := range opts {
		opt(options)
	}

	if options.APIKey == "" {
		return nil, errors.ErrInvalidAPIKey
	}

	config := openai.DefaultConfig(options.APIKey)
	config.BaseURL = options.BaseURL

	return &DeepSeekClient{
		client:  openai.NewClientWithConfig(config),
		options: options,
	}, nil
}

// Name 返回提供商名称
func (c *DeepSeekClient) Name() string {
	return "deepseek"
}

// Model 返回当前模型名称
func (c *DeepSeekClient) Model() string {
	return c.options.Model
}

// Close 关闭客户端连接
func (c *DeepSeekClient) Close() error {
	return nil
}

// Generate 生成响应（非流式）
func (c *DeepSeekClient) Generate(ctx context.Context, req Request) (Response, error) {
	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	chatReq := buildOpenAIChatRequest(req, c.options)

	var resp openai.ChatCompletionResponse
	err := retry.Do(ctx, c.options.MaxRetries, c.options.RetryDelay, func() error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, chatReq)
		return mapOpenAIError(callErr)
	})
	if err != nil {
		return Response{}, err
	}

	return parseOpenAIResponse(resp)
}

// compile-time interface check
var _ Provider = (*DeepSeekClient)(nil)
