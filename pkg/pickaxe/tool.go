package pickaxe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// Kind 声明类型
type Kind string

const (
	// KindTool 普通工具
	KindTool Kind = "tool"
	// KindAgent Agent（可以在内部调用工具箱的长任务）
	KindAgent Kind = "agent"
)

// ToolOptions 工具声明选项
type ToolOptions[I, O any] struct {
	// Name 工具名称（必填，全局唯一）
	Name string
	// Description 工具描述，交给模型判断何时使用
	Description string
	// ExecutionTimeout 单次执行超时，0 表示使用引擎默认值
	ExecutionTimeout time.Duration
	// Retries 失败后的重试次数
	Retries int
	// Fn 工具实现
	Fn tools.Func[I, O]
}

// AgentOptions Agent 声明选项
type AgentOptions[I, O any] ToolOptions[I, O]

// Tool 类型化的工具声明
//
// 输入输出 Schema 由 I、O 反射得到，每次运行都会校验。
type Tool[I, O any] struct {
	*tools.FuncTool[I, O]
	px   *Pickaxe
	kind Kind
}

// NewTool 声明一个工具并注册到客户端
func NewTool[I, O any](px *Pickaxe, opts ToolOptions[I, O]) (*Tool[I, O], error) {
	return declare(px, KindTool, opts)
}

// NewAgent 声明一个 Agent 并注册到客户端
//
// Agent 与工具共享同样的执行语义，可以作为工具箱成员被另一个 Agent 路由。
func NewAgent[I, O any](px *Pickaxe, opts AgentOptions[I, O]) (*Tool[I, O], error) {
	return declare(px, KindAgent, ToolOptions[I, O](opts))
}

func declare[I, O any](px *Pickaxe, kind Kind, opts ToolOptions[I, O]) (*Tool[I, O], error) {
	if px == nil {
		return nil, fmt.Errorf("%w: pickaxe client is required", errors.ErrInvalidConfig)
	}

	ft, err := tools.NewFuncTool(opts.Name, opts.Description, opts.Fn,
		tools.WithExecutionTimeout(opts.ExecutionTimeout),
		tools.WithRetries(opts.Retries),
	)
	if err != nil {
		return nil, err
	}

	t := &Tool[I, O]{FuncTool: ft, px: px, kind: kind}
	if err := px.declare(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Kind 返回声明类型
func (t *Tool[I, O]) Kind() Kind {
	return t.kind
}

// Run 通过引擎运行工具
//
// 在另一个任务内部调用时记为该任务的子运行。
func (t *Tool[I, O]) Run(ctx context.Context, input I) (O, error) {
	var zero O
	raw, err := json.Marshal(input)
	if err != nil {
		return zero, &errors.ValidationError{Tool: t.Name(), Stage: errors.StageInput, Cause: err}
	}

	out, err := t.px.engine.Run(ctx, t.Name(), raw)
	if err != nil {
		return zero, err
	}
	return t.DecodeOutput(out)
}

// Match 当结果来自本工具时返回类型化的参数和输出
func (t *Tool[I, O]) Match(r ToolResult) (I, O, bool) {
	var (
		in  I
		out O
	)
	if r.Name != t.Name() {
		return in, out, false
	}
	in, err := t.DecodeInput(r.Args)
	if err != nil {
		return in, out, false
	}
	out, err = t.DecodeOutput(r.Output)
	if err != nil {
		return in, out, false
	}
	return in, out, true
}

var _ tools.Declaration = (*Tool[struct{}, struct{}])(nil)
