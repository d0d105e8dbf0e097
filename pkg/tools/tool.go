// Package tools 定义工具声明（Declaration）以及工具集的序列化
//
// 工具声明是一个可以按名称独立调用的执行单元，带有输入和输出 Schema。
// 工作流引擎按名称调用声明；工具箱把声明序列化后交给 LLM 选择。
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/schema"
)

// Declaration 工具声明
type Declaration interface {
	// Name 返回工具唯一名称
	// 名称用于 LLM Function Calling 识别，也是工作流引擎中的任务名
	Name() string

	// Description 返回工具描述
	// 描述应清晰说明工具的功能，帮助 LLM 理解何时使用此工具
	Description() string

	// InputSchema 返回输入 Schema，必须描述一个对象
	InputSchema() *schema.Schema

	// OutputSchema 返回输出 Schema
	OutputSchema() *schema.Schema

	// ExecutionTimeout 返回单次执行超时，0 表示使用引擎默认值
	ExecutionTimeout() time.Duration

	// Retries 返回失败后的重试次数
	Retries() int

	// Execute 执行工具
	//
	// 输入先按 InputSchema 校验，输出再按 OutputSchema 校验；
	// 校验失败返回 *errors.ValidationError。
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}
