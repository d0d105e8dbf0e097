package otel

import (
	"context"
	stderrors "errors"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Provider 可观测性提供者
//
// 管理追踪、指标和日志的生命周期。Provider 不修改全局 OpenTelemetry 状态，
// 使用方通过 Tracer/Metrics/Logger 显式获取。
type Provider struct {
	config     Config
	tracer     Tracer
	metrics    Metrics
	logger     Logger
	propagator propagation.TextMapPropagator
	shutdown   []func(context.Context) error
	mu         sync.RWMutex
}

// ProviderOption Provider 配置选项
type ProviderOption func(*providerOptions)

type providerOptions struct {
	logOutput io.Writer
	metrics   Metrics
}

// WithLogOutput 设置日志输出位置（默认 stderr）
func WithLogOutput(w io.Writer) ProviderOption {
	return func(o *providerOptions) {
		o.logOutput = w
	}
}

// WithMetrics 在未启用指标导出时使用给定的指标实现
func WithMetrics(m Metrics) ProviderOption {
	return func(o *providerOptions) {
		o.metrics = m
	}
}

// NewProvider 创建可观测性提供者
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &providerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	p := &Provider{
		config:  cfg,
		tracer:  NewNoopTracer(),
		metrics: NewNoopMetrics(),
		logger:  NewLogger(cfg.Logging, o.logOutput),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	if o.metrics != nil {
		p.metrics = o.metrics
	}

	if !cfg.Enabled {
		return p, nil
	}

	res, err := p.resource(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		if err := p.initTracing(ctx, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	if cfg.Metrics.Enabled {
		if err := p.initMetrics(ctx, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	return p, nil
}

func (p *Provider) resource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(p.config.ServiceName),
			semconv.ServiceVersion(p.config.ServiceVersion),
			attribute.String("deployment.environment", p.config.Environment),
		),
	)
}

// initTracing 初始化追踪
func (p *Provider) initTracing(ctx context.Context, res *resource.Resource) error {
	exporter, err := CreateTraceExporter(ctx, traceExporterConfig(p.config))
	if err != nil {
		return err
	}

	// 创建采样器
	var sampler sdktrace.Sampler
	switch rate := p.config.Tracing.SampleRate; {
	case rate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case rate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(rate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithBatcher(exporter),
	)

	p.shutdown = append(p.shutdown, tp.Shutdown)
	p.tracer = NewTracer(tp.Tracer(p.config.ServiceName))
	return nil
}

// initMetrics 初始化指标
func (p *Provider) initMetrics(ctx context.Context, res *resource.Resource) error {
	exporter, err := CreateMetricExporter(ctx, metricExporterConfig(p.config))
	if err != nil {
		return err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(p.config.Metrics.Interval),
		)),
	)

	p.shutdown = append(p.shutdown, mp.Shutdown)
	p.metrics = NewOTelMetrics(mp.Meter(p.config.ServiceName))
	return nil
}

// Config 返回生效的配置
func (p *Provider) Config() Config {
	return p.config
}

// Tracer 返回追踪器
func (p *Provider) Tracer() Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Metrics 返回指标收集器
func (p *Provider) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

// Logger 返回日志器
func (p *Provider) Logger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

// Propagator 返回上下文传播器
func (p *Provider) Propagator() propagation.TextMapPropagator {
	return p.propagator
}

// Shutdown 优雅关闭，刷新所有未导出的数据
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return stderrors.Join(errs...)
}
