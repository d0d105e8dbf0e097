// Package workflow 定义 Pickaxe 依赖的工作流引擎接口及其进程内实现
//
// 引擎按名称注册任务，负责准入控制、执行超时、重试、运行记录和批量扇出。
// 工具、Agent 和 pick-tool 都以任务的形式注册到引擎。
package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// Handler 任务处理函数，输入输出均为 JSON
type Handler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Task 可按名称调用的任务
type Task struct {
	// Name 任务名称（引擎内唯一）
	Name string
	// Timeout 单次尝试的执行超时，0 表示使用引擎默认值
	Timeout time.Duration
	// Retries 可重试错误的最大重试次数
	Retries int
	// Handler 处理函数
	Handler Handler
}

// TaskFromDeclaration 把工具声明转换为任务
func TaskFromDeclaration(d tools.Declaration) Task {
	return Task{
		Name:    d.Name(),
		Timeout: d.ExecutionTimeout(),
		Retries: d.Retries(),
		Handler: d.Execute,
	}
}

// Item 批量运行中的一项
type Item struct {
	// Task 任务名称
	Task string `json:"workflow"`
	// Input 任务输入
	Input json.RawMessage `json:"input"`
}

// Engine 工作流引擎
type Engine interface {
	// Register 注册任务，名称重复时返回 ErrTaskAlreadyRegistered
	Register(tasks ...Task) error

	// Run 运行单个任务并等待结果
	//
	// 失败时返回 *errors.TaskError。
	Run(ctx context.Context, task string, input json.RawMessage) (json.RawMessage, error)

	// BulkRun 并发运行一组任务并等待全部完成
	//
	// 结果与 items 按下标一一对应；任意一项失败时返回所有失败的合并错误，
	// 不返回部分结果。
	BulkRun(ctx context.Context, items []Item) ([]json.RawMessage, error)
}
