// Package store 持久化工作流运行记录
//
// 引擎在每次状态变化时保存 Run，CLI 通过 List/Get 查询历史运行。
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Status 运行状态
type Status string

const (
	// StatusQueued 已提交，等待执行槽位
	StatusQueued Status = "queued"
	// StatusRunning 执行中
	StatusRunning Status = "running"
	// StatusSucceeded 执行成功
	StatusSucceeded Status = "succeeded"
	// StatusFailed 执行失败（已用尽重试）
	StatusFailed Status = "failed"
	// StatusCancelled 上下文被取消
	StatusCancelled Status = "cancelled"
)

// Terminal 是否为终态
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Run 一次任务运行
type Run struct {
	ID         string          `json:"id"`
	Task       string          `json:"task"`
	ParentID   string          `json:"parent_id,omitempty"`
	Status     Status          `json:"status"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	Attempts   int             `json:"attempts"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  time.Time       `json:"started_at,omitempty"`
	FinishedAt time.Time       `json:"finished_at,omitempty"`
}

// Duration 运行耗时，未结束时返回 0
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Filter 查询条件，零值字段不参与过滤
type Filter struct {
	Task     string
	Status   Status
	ParentID string
	// Limit 返回条数上限，<= 0 时使用 DefaultLimit
	Limit int
}

// DefaultLimit List 默认返回条数
const DefaultLimit = 100

// Store 运行记录存储
type Store interface {
	// Save 插入或更新运行记录
	Save(ctx context.Context, run Run) error
	// Get 获取运行记录，不存在时返回 ErrRunNotFound
	Get(ctx context.Context, id string) (Run, error)
	// List 按创建时间倒序列出运行记录
	List(ctx context.Context, filter Filter) ([]Run, error)
	// Close 释放资源
	Close() error
}
