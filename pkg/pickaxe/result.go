package pickaxe

import (
	"encoding/json"
	"fmt"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
)

// ToolResult 一次工具执行的结果
//
// 以 Name 区分的联合类型：Args 是传给工具的输入，Output 已通过工具的输出 Schema 校验。
type ToolResult struct {
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args"`
	Output json.RawMessage `json:"output"`
}

// DecodeArgs 把参数解码到 v
func (r ToolResult) DecodeArgs(v any) error {
	return json.Unmarshal(r.Args, v)
}

// DecodeOutput 把输出解码到 v
func (r ToolResult) DecodeOutput(v any) error {
	return json.Unmarshal(r.Output, v)
}

// AssertExhaustive 表示 switch 没有覆盖某个工具，总是返回错误
//
//	switch result.Name {
//	case weather.Name():
//	    ...
//	default:
//	    return pickaxe.AssertExhaustive(result)
//	}
func AssertExhaustive(r ToolResult) error {
	return fmt.Errorf("%w: %q", errors.ErrUnhandledTool, r.Name)
}
