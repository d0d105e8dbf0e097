package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/schema"
)

// Func 工具执行函数类型
type Func[I, O any] func(ctx context.Context, input I) (O, error)

// FuncTool 通过函数快速创建工具
//
// 输入输出 Schema 从 I、O 两个类型反射生成。
//
// 使用示例:
//
//	type WeatherInput struct {
//	    City string `json:"city" jsonschema:"description=City name"`
//	}
//	type WeatherOutput struct {
//	    Forecast string `json:"forecast"`
//	}
//	weather, err := tools.NewFuncTool("weather", "Get the weather in a given city",
//	    func(ctx context.Context, in WeatherInput) (WeatherOutput, error) {
//	        return WeatherOutput{Forecast: "sunny"}, nil
//	    },
//	)
type FuncTool[I, O any] struct {
	name        string
	description string
	input       *schema.Schema
	output      *schema.Schema
	fn          Func[I, O]
	timeout     time.Duration
	retries     int
}

// FuncToolOption FuncTool 配置选项
type FuncToolOption func(*funcToolConfig)

type funcToolConfig struct {
	timeout time.Duration
	retries int
}

// WithExecutionTimeout 设置单次执行超时
func WithExecutionTimeout(d time.Duration) FuncToolOption {
	return func(c *funcToolConfig) {
		c.timeout = d
	}
}

// WithRetries 设置失败后的重试次数
func WithRetries(n int) FuncToolOption {
	return func(c *funcToolConfig) {
		c.retries = n
	}
}

// NewFuncTool 创建函数工具
func NewFuncTool[I, O any](name, description string, fn Func[I, O], opts ...FuncToolOption) (*FuncTool[I, O], error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", errors.ErrInvalidTool)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: tool %q has no function", errors.ErrInvalidTool, name)
	}

	in, err := schema.For[I]()
	if err != nil {
		return nil, fmt.Errorf("%w: tool %q input schema: %v", errors.ErrInvalidTool, name, err)
	}
	if !in.IsObject() {
		return nil, fmt.Errorf("%w: tool %q input must be an object", errors.ErrInvalidTool, name)
	}
	out, err := schema.For[O]()
	if err != nil {
		return nil, fmt.Errorf("%w: tool %q output schema: %v", errors.ErrInvalidTool, name, err)
	}

	cfg := &funcToolConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.timeout < 0 || cfg.retries < 0 {
		return nil, fmt.Errorf("%w: tool %q has negative timeout or retries", errors.ErrInvalidTool, name)
	}

	return &FuncTool[I, O]{
		name:        name,
		description: description,
		input:       in,
		output:      out,
		fn:          fn,
		timeout:     cfg.timeout,
		retries:     cfg.retries,
	}, nil
}

// MustFuncTool 创建函数工具，失败则 panic
func MustFuncTool[I, O any](name, description string, fn Func[I, O], opts ...FuncToolOption) *FuncTool[I, O] {
	t, err := NewFuncTool(name, description, fn, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name 返回工具名称
func (t *FuncTool[I, O]) Name() string {
	return t.name
}

// Description 返回工具描述
func (t *FuncTool[I, O]) Description() string {
	return t.description
}

// InputSchema 返回输入 Schema
func (t *FuncTool[I, O]) InputSchema() *schema.Schema {
	return t.input
}

// OutputSchema 返回输出 Schema
func (t *FuncTool[I, O]) OutputSchema() *schema.Schema {
	return t.output
}

// ExecutionTimeout 返回单次执行超时
func (t *FuncTool[I, O]) ExecutionTimeout() time.Duration {
	return t.timeout
}

// Retries 返回重试次数
func (t *FuncTool[I, O]) Retries() int {
	return t.retries
}

// Execute 以 JSON 输入执行工具
func (t *FuncTool[I, O]) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	in, err := t.DecodeInput(input)
	if err != nil {
		return nil, err
	}

	out, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}

	raw, err := t.output.ValidateValue(out)
	if err != nil {
		return nil, &errors.ValidationError{Tool: t.name, Stage: errors.StageOutput, Cause: err}
	}
	return raw, nil
}

// Call 以类型化输入直接执行工具（同样校验输入和输出）
func (t *FuncTool[I, O]) Call(ctx context.Context, input I) (O, error) {
	var zero O
	raw, err := json.Marshal(input)
	if err != nil {
		return zero, &errors.ValidationError{Tool: t.name, Stage: errors.StageInput, Cause: err}
	}
	out, err := t.Execute(ctx, raw)
	if err != nil {
		return zero, err
	}
	return t.DecodeOutput(out)
}

// DecodeInput 校验并解码输入
func (t *FuncTool[I, O]) DecodeInput(raw json.RawMessage) (I, error) {
	var in I
	if err := t.input.Validate(raw); err != nil {
		return in, &errors.ValidationError{Tool: t.name, Stage: errors.StageInput, Cause: err}
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, &errors.ValidationError{Tool: t.name, Stage: errors.StageInput, Cause: err}
	}
	return in, nil
}

// DecodeOutput 校验并解码输出
func (t *FuncTool[I, O]) DecodeOutput(raw json.RawMessage) (O, error) {
	var out O
	if err := t.output.Validate(raw); err != nil {
		return out, &errors.ValidationError{Tool: t.name, Stage: errors.StageOutput, Cause: err}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &errors.ValidationError{Tool: t.name, Stage: errors.StageOutput, Cause: err}
	}
	return out, nil
}

// compile-time interface check
var _ Declaration = (*FuncTool[struct{}, struct{}])(nil)
