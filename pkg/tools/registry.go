package tools

import (
	"fmt"
	"sync"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
)

// Registry 工具注册表
//
// 保存独立注册的工具声明，按注册顺序返回。支持并发安全的注册和查询。
type Registry struct {
	tools map[string]Declaration
	order []string
	mu    sync.RWMutex
}

// NewRegistry 创建新的工具注册表
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Declaration),
	}
}

// Register 注册工具
//
// 同一个声明重复注册是幂等的；不同声明使用同一名称返回 ErrToolAlreadyRegistered。
func (r *Registry) Register(tool Declaration) error {
	if tool == nil || tool.Name() == "" {
		return errors.ErrInvalidTool
	}

	name := tool.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.tools[name]; exists {
		if existing == tool {
			return nil
		}
		return fmt.Errorf("%w: %q", errors.ErrToolAlreadyRegistered, name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get 获取工具
func (r *Registry) Get(name string) (Declaration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", errors.ErrToolNotFound, name)
	}
	return tool, nil
}

// Has 检查工具是否存在
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tools[name]
	return exists
}

// List 按注册顺序返回工具名称
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All 按注册顺序返回所有工具
func (r *Registry) All() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Declaration, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Count 返回已注册工具数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
