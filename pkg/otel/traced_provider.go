package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/llm"
)

// TracedProvider 为 LLM 提供商添加追踪和指标
type TracedProvider struct {
	provider llm.Provider
	tracer   Tracer
	metrics  Metrics
}

// TracedProviderOption TracedProvider 配置选项
type TracedProviderOption func(*TracedProvider)

// WithTracedProviderTracer 设置追踪器
func WithTracedProviderTracer(tracer Tracer) TracedProviderOption {
	return func(p *TracedProvider) {
		p.tracer = tracer
	}
}

// WithTracedProviderMetrics 设置指标收集器
func WithTracedProviderMetrics(metrics Metrics) TracedProviderOption {
	return func(p *TracedProvider) {
		p.metrics = metrics
	}
}

// NewTracedProvider 包装 LLM 提供商
func NewTracedProvider(provider llm.Provider, opts ...TracedProviderOption) *TracedProvider {
	tp := &TracedProvider{
		provider: provider,
		tracer:   NewNoopTracer(),
		metrics:  NewNoopMetrics(),
	}

	for _, opt := range opts {
		opt(tp)
	}

	return tp
}

// Generate 带追踪的生成调用
func (p *TracedProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, span := p.tracer.Start(ctx, "llm.generate",
		WithSpanKind(SpanKindClient),
		WithAttributes(
			LLMProvider(p.provider.Name()),
			LLMModel(p.provider.Model()),
			attribute.Int("llm.tools", len(req.Tools)),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.provider.Generate(ctx, req)
	p.record(ctx, resp, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(ErrorAttrs("llm", err.Error(), errors.IsRetryable(err))...)
		span.SetStatus(StatusError, err.Error())
		return resp, err
	}

	span.SetAttributes(LLMTokens(
		resp.TokenUsage.PromptTokens,
		resp.TokenUsage.CompletionTokens,
		resp.TokenUsage.TotalTokens,
	)...)
	span.AddEvent("llm.response",
		attribute.String("finish_reason", resp.FinishReason),
		attribute.Int("tool_calls", len(resp.ToolCalls)),
	)
	span.SetStatus(StatusOK, "")

	return resp, nil
}

func (p *TracedProvider) record(ctx context.Context, resp llm.Response, err error, d time.Duration) {
	attrs := []Attr{
		NewAttr("provider", p.provider.Name()),
		NewAttr("model", p.provider.Model()),
	}

	p.metrics.Histogram(MetricLLMRequestDuration).Record(ctx, float64(d.Milliseconds()), attrs...)

	if err != nil {
		p.metrics.Counter(MetricLLMRequests).Add(ctx, 1, append(attrs, NewAttr("status", "error"))...)
		p.metrics.Counter(MetricLLMErrors).Add(ctx, 1, attrs...)
		return
	}

	p.metrics.Counter(MetricLLMRequests).Add(ctx, 1, append(attrs, NewAttr("status", "success"))...)
	p.metrics.Counter(MetricLLMTokensPrompt).Add(ctx, int64(resp.TokenUsage.PromptTokens), attrs...)
	p.metrics.Counter(MetricLLMTokensCompletion).Add(ctx, int64(resp.TokenUsage.CompletionTokens), attrs...)
	p.metrics.Counter(MetricLLMTokensTotal).Add(ctx, int64(resp.TokenUsage.TotalTokens), attrs...)
}

// Name 返回被包装提供商的名称
func (p *TracedProvider) Name() string {
	return p.provider.Name()
}

// Model 返回被包装提供商的模型
func (p *TracedProvider) Model() string {
	return p.provider.Model()
}

// Close 关闭被包装的提供商
func (p *TracedProvider) Close() error {
	return p.provider.Close()
}

// Unwrap 返回被包装的提供商
func (p *TracedProvider) Unwrap() llm.Provider {
	return p.provider
}

// compile-time interface check
var _ llm.Provider = (*TracedProvider)(nil)
