// Package pickaxe 是构建在工作流引擎之上的 Agent SDK
//
// Pickaxe 客户端持有工作流引擎、默认 LLM、工具声明和工具箱注册表。
// 工具和 Agent 作为任务注册到引擎；工具箱通过内置的 pick-tool 任务
// 让 LLM 从一组工具中选择要执行的工具并给出参数。
//
// 基本用法:
//
//	px, _ := pickaxe.New(workflow.NewLocalEngine(), provider)
//	weather, _ := pickaxe.NewTool(px, pickaxe.ToolOptions[WeatherIn, WeatherOut]{
//	    Name:        "weather",
//	    Description: "Get the weather in a given city",
//	    Fn:          getWeather,
//	})
//	box, _ := px.Toolbox(pickaxe.ToolboxOptions{Tools: []tools.Declaration{weather, clock}})
//	result, _ := box.PickAndRun(ctx, pickaxe.PickOptions{Prompt: "What's the weather in Tokyo?"})
package pickaxe

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/llm"
	"github.com/hatchet-dev/pickaxe/pkg/otel"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
	"github.com/hatchet-dev/pickaxe/pkg/workflow"
	"github.com/hatchet-dev/pickaxe/pkg/workflow/store"
)

// Pickaxe 客户端
type Pickaxe struct {
	engine   workflow.Engine
	provider llm.Provider
	cfg      config.ToolboxConfig
	counter  llm.TokenCounter

	decls     *tools.Registry
	toolboxes map[string]*Toolbox
	order     []string
	mu        sync.RWMutex

	tracer  otel.Tracer
	metrics otel.Metrics
	logger  otel.Logger
	closers []func(context.Context) error
}

// Option Pickaxe 配置选项
type Option func(*Pickaxe)

// WithToolboxConfig 设置工具箱与 pick-tool 配置
func WithToolboxConfig(cfg config.ToolboxConfig) Option {
	return func(p *Pickaxe) {
		p.cfg = cfg
	}
}

// WithTokenCounter 设置选择提示词的 Token 计数器
func WithTokenCounter(c llm.TokenCounter) Option {
	return func(p *Pickaxe) {
		p.counter = c
	}
}

// WithTracer 设置追踪器
func WithTracer(t otel.Tracer) Option {
	return func(p *Pickaxe) {
		p.tracer = t
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m otel.Metrics) Option {
	return func(p *Pickaxe) {
		p.metrics = m
	}
}

// WithLogger 设置日志器
func WithLogger(l otel.Logger) Option {
	return func(p *Pickaxe) {
		p.logger = l
	}
}

// New 创建 Pickaxe 客户端并向引擎注册 pick-tool 任务
func New(engine workflow.Engine, provider llm.Provider, opts ...Option) (*Pickaxe, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", errors.ErrInvalidConfig)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: llm provider is required", errors.ErrInvalidConfig)
	}

	p := &Pickaxe{
		engine:    engine,
		provider:  provider,
		cfg:       config.ToolboxConfig{},
		decls:     tools.NewRegistry(),
		toolboxes: make(map[string]*Toolbox),
		tracer:    otel.NewNoopTracer(),
		metrics:   otel.NewNoopMetrics(),
		logger:    otel.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.cfg = p.cfg.WithDefaults()
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("toolbox: %w", err)
	}
	if p.cfg.MaxPromptTokens > 0 && p.counter == nil {
		p.counter = llm.DefaultTokenCounter(provider.Model())
	}

	if err := engine.Register(p.pickToolTask()); err != nil {
		return nil, err
	}
	return p, nil
}

// FromConfig 按全局配置组装客户端：可观测性、LLM、运行记录存储和本地引擎
//
// 返回的客户端持有这些资源，使用完毕后调用 Close。
func FromConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Pickaxe, *workflow.LocalEngine, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	obs, err := otel.NewProvider(ctx, otel.FromConfig(cfg.Observability))
	if err != nil {
		return nil, nil, fmt.Errorf("observability: %w", err)
	}

	raw, err := llm.FromConfig(cfg.LLM)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, nil, fmt.Errorf("llm: %w", err)
	}
	provider := otel.NewTracedProvider(raw,
		otel.WithTracedProviderTracer(obs.Tracer()),
		otel.WithTracedProviderMetrics(obs.Metrics()),
	)

	runs, err := store.New(cfg.Store)
	if err != nil {
		_ = provider.Close()
		_ = obs.Shutdown(ctx)
		return nil, nil, fmt.Errorf("store: %w", err)
	}

	engine := workflow.FromConfig(cfg.Worker,
		workflow.WithStore(runs),
		workflow.WithTracer(obs.Tracer()),
		workflow.WithMetrics(obs.Metrics()),
		workflow.WithLogger(obs.Logger()),
	)

	base := []Option{
		WithToolboxConfig(cfg.Toolbox),
		WithTracer(obs.Tracer()),
		WithMetrics(obs.Metrics()),
		WithLogger(obs.Logger()),
	}
	p, err := New(engine, provider, append(base, opts...)...)
	if err != nil {
		_ = runs.Close()
		_ = provider.Close()
		_ = obs.Shutdown(ctx)
		return nil, nil, err
	}

	p.closers = append(p.closers,
		func(context.Context) error { return runs.Close() },
		func(context.Context) error { return provider.Close() },
		obs.Shutdown,
	)
	return p, engine, nil
}

// Engine 返回工作流引擎
func (p *Pickaxe) Engine() workflow.Engine {
	return p.engine
}

// Provider 返回默认 LLM
func (p *Pickaxe) Provider() llm.Provider {
	return p.provider
}

// Logger 返回日志器
func (p *Pickaxe) Logger() otel.Logger {
	return p.logger
}

// declare 登记工具声明并注册为引擎任务
//
// 同一声明重复登记是空操作；不同声明使用同一名称时报错。
func (p *Pickaxe) declare(d tools.Declaration) error {
	if d == nil || d.Name() == "" {
		return fmt.Errorf("%w: declaration has no name", errors.ErrInvalidTool)
	}
	if p.decls.Has(d.Name()) {
		return p.decls.Register(d)
	}
	if d.Name() == PickToolTask {
		return fmt.Errorf("%w: %q is reserved", errors.ErrToolAlreadyRegistered, PickToolTask)
	}

	if err := p.engine.Register(workflow.TaskFromDeclaration(d)); err != nil {
		return err
	}
	return p.decls.Register(d)
}

// Declare 登记一个已有的工具声明（如 builtin 工具）
func (p *Pickaxe) Declare(decls ...tools.Declaration) error {
	for _, d := range decls {
		if err := p.declare(d); err != nil {
			return err
		}
	}
	return nil
}

// Tools 按登记顺序返回所有工具声明
func (p *Pickaxe) Tools() []tools.Declaration {
	return p.decls.All()
}

// Toolboxes 按创建顺序返回所有工具箱
func (p *Pickaxe) Toolboxes() []*Toolbox {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Toolbox, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, p.toolboxes[key])
	}
	return out
}

// LookupToolbox 按 key 查找工具箱
func (p *Pickaxe) LookupToolbox(key string) (*Toolbox, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tb, ok := p.toolboxes[key]
	if !ok {
		return nil, &errors.ToolboxNotFoundError{Key: key}
	}
	return tb, nil
}

func (p *Pickaxe) registerToolbox(tb *Toolbox) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.toolboxes[tb.key]; exists {
		return fmt.Errorf("%w: %q", errors.ErrToolboxAlreadyRegistered, tb.key)
	}
	p.toolboxes[tb.key] = tb
	p.order = append(p.order, tb.key)
	return nil
}

// Starter 可以阻塞运行的引擎
type Starter interface {
	Start(ctx context.Context) error
}

// Start 启动 worker 并阻塞到 ctx 结束
func (p *Pickaxe) Start(ctx context.Context) error {
	starter, ok := p.engine.(Starter)
	if !ok {
		return fmt.Errorf("%w: engine cannot be started in-process", errors.ErrNotImplemented)
	}

	keys := make([]string, 0)
	for _, tb := range p.Toolboxes() {
		keys = append(keys, tb.Key())
	}
	sort.Strings(keys)
	p.logger.Info("starting pickaxe worker", "tools", p.decls.List(), "toolboxes", keys)

	return starter.Start(ctx)
}

// Close 释放 FromConfig 创建的资源
func (p *Pickaxe) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range p.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return stderrors.Join(errs...)
}
