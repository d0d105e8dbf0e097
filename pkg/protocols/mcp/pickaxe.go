package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hatchet-dev/pickaxe/pkg/pickaxe"
	"github.com/hatchet-dev/pickaxe/pkg/schema"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// PickAndRunPrefix 工具箱对应 MCP 工具名的前缀
const PickAndRunPrefix = "pick_and_run"

// PickAndRunArgs pick_and_run 工具的参数
type PickAndRunArgs struct {
	Prompt   string `json:"prompt" jsonschema:"description=Natural-language instruction used to pick tools"`
	MaxTools int    `json:"maxTools,omitempty" jsonschema:"minimum=1,description=Maximum number of tool calls to run"`
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ToolboxToolName 返回工具箱对应的 MCP 工具名
//
// 只有一个工具箱时为 pick_and_run，否则为 pick_and_run_<key>（非法字符替换为下划线）。
// 不同的 key 可能得到同一个名称，FromPickaxe 注册时再加数字后缀区分。
func ToolboxToolName(key string, single bool) string {
	if single {
		return PickAndRunPrefix
	}
	return PickAndRunPrefix + "_" + strings.Trim(unsafeName.ReplaceAllString(key, "_"), "_")
}

// FromPickaxe 创建服务于 Pickaxe 客户端的 MCP 服务器
//
// 每个已登记的工具（经引擎运行，保留重试、超时和运行记录）暴露为同名 MCP 工具；
// 每个工具箱暴露为一个 pick_and_run 工具。
func FromPickaxe(px *pickaxe.Pickaxe, opts ...ServerOption) (*Server, error) {
	s := NewServer("pickaxe", opts...)

	for _, d := range px.Tools() {
		if err := s.AddTool(declarationTool(px, d)); err != nil {
			return nil, err
		}
	}

	argsSchema, err := schema.For[PickAndRunArgs]()
	if err != nil {
		return nil, err
	}

	boxes := px.Toolboxes()
	for _, tb := range boxes {
		name := s.uniqueName(ToolboxToolName(tb.Key(), len(boxes) == 1))
		if err := s.AddTool(toolboxTool(tb, name, argsSchema)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func declarationTool(px *pickaxe.Pickaxe, d tools.Declaration) ServerTool {
	name := d.Name()
	return ServerTool{
		Name:        name,
		Description: d.Description(),
		InputSchema: d.InputSchema().JSON(),
		Handler: func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
			return px.Engine().Run(ctx, name, args)
		},
	}
}

func toolboxTool(tb *pickaxe.Toolbox, name string, argsSchema *schema.Schema) ServerTool {
	return ServerTool{
		Name: name,
		Description: fmt.Sprintf("Pick and run tools from toolbox %q for a natural-language prompt.\n\n%s",
			tb.Key(), tools.DescribeTools(tb.Tools())),
		InputSchema: argsSchema.JSON(),
		Handler: func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
			if err := argsSchema.Validate(raw); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			var args PickAndRunArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, err
			}

			results, err := tb.PickAndRunAll(ctx, pickaxe.PickOptions{
				Prompt:   args.Prompt,
				MaxTools: args.MaxTools,
			})
			if err != nil {
				return nil, err
			}
			return json.Marshal(results)
		},
	}
}
