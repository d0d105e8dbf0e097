package pickaxe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/otel"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
	"github.com/hatchet-dev/pickaxe/pkg/workflow"
)

// ToolboxOptions 工具箱选项
type ToolboxOptions struct {
	// Name 显式的工具箱 key；为空时由工具名排序后以冒号连接得到
	Name string
	// Tools 成员工具，顺序即序列化顺序
	Tools []tools.Declaration
}

// Toolbox 一组可由 LLM 选择的工具
//
// 创建后不可变。成员工具会登记到所属的 Pickaxe 客户端并注册为引擎任务。
type Toolbox struct {
	px      *Pickaxe
	key     string
	toolset *tools.Toolset
}

// Toolbox 创建并注册工具箱
//
// 工具缺少名称或输入 Schema、工具名重复、key 已被占用时返回错误。
func (p *Pickaxe) Toolbox(opts ToolboxOptions) (*Toolbox, error) {
	if len(opts.Tools) == 0 {
		return nil, errors.ErrEmptyToolbox
	}

	ts, err := tools.NewToolset(opts.Tools...)
	if err != nil {
		return nil, err
	}

	key := opts.Name
	if key == "" {
		key = ts.Key()
	}

	if _, err := p.LookupToolbox(key); err == nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrToolboxAlreadyRegistered, key)
	}
	if err := p.Declare(ts.Declarations()...); err != nil {
		return nil, err
	}

	tb := &Toolbox{px: p, key: key, toolset: ts}
	if err := p.registerToolbox(tb); err != nil {
		return nil, err
	}

	p.logger.Debug("toolbox registered", "toolbox", key, "tools", ts.Names())
	return tb, nil
}

// Key 返回工具箱 key
func (t *Toolbox) Key() string {
	return t.key
}

// Tools 按声明顺序返回成员工具
func (t *Toolbox) Tools() []tools.Declaration {
	return t.toolset.Declarations()
}

// Toolset 返回序列化后的工具集
func (t *Toolbox) Toolset() *tools.Toolset {
	return t.toolset
}

// PickOptions Pick 选项
type PickOptions struct {
	// Prompt 自然语言指令（必填）
	Prompt string
	// MaxTools 最多选择的工具调用数，0 表示使用默认值 1
	MaxTools int
}

// Selection 一次工具选择
type Selection struct {
	// Name 工具名称
	Name string `json:"name"`
	// Input 模型给出的参数
	Input json.RawMessage `json:"input"`
}

// Pick 让模型为 prompt 选择工具，按选择顺序返回（可能为空）
func (t *Toolbox) Pick(ctx context.Context, opts PickOptions) ([]Selection, error) {
	ctx, span := t.px.tracer.Start(ctx, "pickaxe.pick",
		otel.WithAttributes(
			otel.ToolboxKey(t.key),
			otel.ToolboxMaxTools(opts.MaxTools),
		),
	)
	defer span.End()

	start := time.Now()
	selections, err := t.pick(ctx, opts)

	attrs := []otel.Attr{otel.NewAttr("toolbox", t.key)}
	t.px.metrics.Counter(otel.MetricToolboxPicks).Add(ctx, 1, attrs...)
	t.px.metrics.Histogram(otel.MetricToolboxPickDuration).Record(ctx, float64(time.Since(start).Milliseconds()), attrs...)
	if err != nil {
		t.px.metrics.Counter(otel.MetricToolboxErrors).Add(ctx, 1, attrs...)
		span.RecordError(err)
		span.SetStatus(otel.StatusError, err.Error())
		return nil, err
	}

	t.px.metrics.Histogram(otel.MetricToolboxSelectedTools).Record(ctx, float64(len(selections)), attrs...)
	span.SetAttributes(otel.ToolboxSelected(selectionNames(selections)))
	span.SetStatus(otel.StatusOK, "")
	return selections, nil
}

func (t *Toolbox) pick(ctx context.Context, opts PickOptions) ([]Selection, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", errors.ErrInvalidPickInput)
	}
	if opts.MaxTools < 0 {
		return nil, fmt.Errorf("%w: maxTools must be positive", errors.ErrInvalidPickInput)
	}

	input, err := json.Marshal(PickInput{
		Prompt:     opts.Prompt,
		ToolboxKey: t.key,
		MaxTools:   opts.MaxTools,
	})
	if err != nil {
		return nil, err
	}

	raw, err := t.px.engine.Run(ctx, PickToolTask, input)
	if err != nil {
		return nil, err
	}

	var out PickOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s output: %w", PickToolTask, err)
	}

	var selections []Selection
	for _, step := range out.Steps {
		for _, call := range step {
			selections = append(selections, Selection{Name: call.ToolName, Input: call.Args})
		}
	}
	return selections, nil
}

// PickAndRun 选择一个工具并执行，返回单个结果
//
// MaxTools 大于 1 时使用 PickAndRunAll。未指定 MaxTools 时固定为 1，
// 不使用 toolbox.default_max_tools。
func (t *Toolbox) PickAndRun(ctx context.Context, opts PickOptions) (ToolResult, error) {
	if opts.MaxTools > 1 {
		return ToolResult{}, fmt.Errorf("%w: maxTools %d returns several results, use PickAndRunAll",
			errors.ErrInvalidPickInput, opts.MaxTools)
	}
	if opts.MaxTools == 0 {
		opts.MaxTools = 1
	}

	results, err := t.PickAndRunAll(ctx, opts)
	if err != nil {
		return ToolResult{}, err
	}
	return results[0], nil
}

// PickAndRunAll 选择最多 MaxTools 个工具，并发执行后按选择顺序返回结果
//
// 全部成功才返回结果；任一工具失败时整个调用失败。
// 模型没有选择任何工具时返回 ErrNoToolSelected。
func (t *Toolbox) PickAndRunAll(ctx context.Context, opts PickOptions) ([]ToolResult, error) {
	ctx, span := t.px.tracer.Start(ctx, "pickaxe.pick_and_run",
		otel.WithAttributes(otel.ToolboxKey(t.key)),
	)
	defer span.End()

	results, err := t.pickAndRun(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otel.StatusError, err.Error())
		return nil, err
	}
	span.SetStatus(otel.StatusOK, "")
	return results, nil
}

func (t *Toolbox) pickAndRun(ctx context.Context, opts PickOptions) ([]ToolResult, error) {
	selections, err := t.Pick(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w (toolbox %q)", errors.ErrNoToolSelected, t.key)
	}

	items := make([]workflow.Item, len(selections))
	for i, s := range selections {
		items[i] = workflow.Item{Task: s.Name, Input: s.Input}
	}

	outputs, err := t.px.engine.BulkRun(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(outputs) != len(selections) {
		return nil, fmt.Errorf("bulk run returned %d results for %d tools", len(outputs), len(selections))
	}

	results := make([]ToolResult, len(selections))
	for i, s := range selections {
		results[i] = ToolResult{Name: s.Name, Args: s.Input, Output: outputs[i]}
	}

	t.px.logger.WithContext(ctx).Debug("toolbox run finished",
		"toolbox", t.key,
		"tools", selectionNames(selections),
	)
	return results, nil
}

// AssertExhaustive 在按工具名 switch 的 default 分支中调用，总是返回错误
func (t *Toolbox) AssertExhaustive(r ToolResult) error {
	return AssertExhaustive(r)
}

func selectionNames(selections []Selection) []string {
	names := make([]string, len(selections))
	for i, s := range selections {
		names[i] = s.Name
	}
	return names
}
