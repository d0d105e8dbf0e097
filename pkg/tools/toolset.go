package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/llm"
)

// KeySeparator 工具集派生 key 的分隔符
const KeySeparator = ":"

// Spec 单个工具交给 LLM 的描述
type Spec struct {
	// Parameters 参数 Schema (JSON Schema 格式)
	Parameters map[string]any `json:"parameters"`
	// Description 工具描述
	Description string `json:"description"`
}

// Toolset 有序、不可变的工具声明集合
//
// 声明顺序在序列化时保持不变；工具名在集合内唯一。
type Toolset struct {
	decls []Declaration
	index map[string]int
	specs map[string]Spec
	defs  []llm.ToolDefinition
}

// NewToolset 创建工具集并一次性完成序列化
//
// 缺少名称、缺少输入 Schema 或名称重复时立即失败，错误中包含出错的工具。
func NewToolset(decls ...Declaration) (*Toolset, error) {
	s := &Toolset{
		decls: make([]Declaration, 0, len(decls)),
		index: make(map[string]int, len(decls)),
		specs: make(map[string]Spec, len(decls)),
		defs:  make([]llm.ToolDefinition, 0, len(decls)),
	}

	for i, d := range decls {
		if d == nil {
			return nil, fmt.Errorf("%w: tool #%d is nil", errors.ErrInvalidTool, i)
		}
		name := d.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: tool #%d has no name", errors.ErrInvalidTool, i)
		}
		if d.InputSchema() == nil {
			return nil, fmt.Errorf("%w: tool %q has no input schema", errors.ErrInvalidTool, name)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", errors.ErrDuplicateTool, name)
		}

		params := d.InputSchema().Map()
		s.index[name] = len(s.decls)
		s.decls = append(s.decls, d)
		s.specs[name] = Spec{Parameters: params, Description: d.Description()}
		s.defs = append(s.defs, llm.ToolDefinition{
			Name:        name,
			Description: d.Description(),
			Parameters:  params,
		})
	}

	return s, nil
}

// DeriveKey 由工具名派生 key：排序后以冒号连接，与声明顺序无关
func DeriveKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, KeySeparator)
}

// Key 返回工具集的派生 key
func (s *Toolset) Key() string {
	return DeriveKey(s.Names())
}

// Names 按声明顺序返回工具名
func (s *Toolset) Names() []string {
	names := make([]string, len(s.decls))
	for i, d := range s.decls {
		names[i] = d.Name()
	}
	return names
}

// Len 返回工具数量
func (s *Toolset) Len() int {
	return len(s.decls)
}

// Get 按名称查找工具
func (s *Toolset) Get(name string) (Declaration, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.decls[i], true
}

// Declarations 按声明顺序返回所有工具
func (s *Toolset) Declarations() []Declaration {
	return append([]Declaration(nil), s.decls...)
}

// ForAI 返回 name -> {parameters, description} 映射
func (s *Toolset) ForAI() map[string]Spec {
	out := make(map[string]Spec, len(s.specs))
	for k, v := range s.specs {
		out[k] = v
	}
	return out
}

// Definitions 按声明顺序返回 Function Calling 工具定义
func (s *Toolset) Definitions() []llm.ToolDefinition {
	return append([]llm.ToolDefinition(nil), s.defs...)
}
