// Package errors 定义框架的通用错误类型
package errors

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	// ErrNotImplemented 功能未实现
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrContextCanceled 上下文被取消
	ErrContextCanceled = errors.New("context canceled")
)

// LLM 相关错误
var (
	// ErrRateLimited 请求被限速
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout 请求超时
	ErrTimeout = errors.New("request timeout")
	// ErrTokenLimitExceeded Token 限制超出
	ErrTokenLimitExceeded = errors.New("token limit exceeded")
	// ErrInvalidAPIKey API 密钥无效
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrModelNotFound 模型未找到
	ErrModelNotFound = errors.New("model not found")
	// ErrProviderUnavailable 提供商不可用
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidResponse LLM 响应无效
	ErrInvalidResponse = errors.New("invalid LLM response")
)

// Tool 相关错误
var (
	// ErrToolNotFound 工具未找到
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidToolArgs 工具参数无效
	ErrInvalidToolArgs = errors.New("invalid tool arguments")
	// ErrInvalidToolOutput 工具输出不符合输出 Schema
	ErrInvalidToolOutput = errors.New("invalid tool output")
	// ErrToolAlreadyRegistered 工具已注册
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	// ErrInvalidTool 无效的工具（缺少名称、Schema 或执行函数）
	ErrInvalidTool = errors.New("invalid tool")
	// ErrDuplicateTool 同一工具箱中出现重名工具
	ErrDuplicateTool = errors.New("duplicate tool name")
	// ErrToolTimeout 工具执行超时
	ErrToolTimeout = errors.New("tool execution timeout")
)

// Toolbox 相关错误
var (
	// ErrToolboxNotFound 工具箱未注册
	ErrToolboxNotFound = errors.New("toolbox not found")
	// ErrToolboxAlreadyRegistered 工具箱 key 冲突
	ErrToolboxAlreadyRegistered = errors.New("toolbox already registered")
	// ErrEmptyToolbox 工具箱没有任何工具
	ErrEmptyToolbox = errors.New("toolbox has no tools")
	// ErrNoToolSelected 模型没有选择任何工具
	ErrNoToolSelected = errors.New("no tool selected")
	// ErrUnknownTool 模型选择了工具箱之外的工具
	ErrUnknownTool = errors.New("selected tool is not part of the toolbox")
	// ErrUnhandledTool AssertExhaustive 被调用，说明 switch 未覆盖某个工具
	ErrUnhandledTool = errors.New("unhandled tool in exhaustive switch")
	// ErrInvalidPickInput Pick 输入无效
	ErrInvalidPickInput = errors.New("invalid pick input")
)

// Workflow 引擎相关错误
var (
	// ErrTaskNotFound 任务未注册
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskAlreadyRegistered 任务已注册
	ErrTaskAlreadyRegistered = errors.New("task already registered")
	// ErrRunNotFound 运行记录不存在
	ErrRunNotFound = errors.New("run not found")
	// ErrEngineStopped 引擎已停止
	ErrEngineStopped = errors.New("engine stopped")
	// ErrTaskPanicked 任务执行时发生 panic
	ErrTaskPanicked = errors.New("task panicked")
	// ErrInvalidTask 任务缺少名称或处理函数
	ErrInvalidTask = errors.New("invalid task")
	// ErrEngineRunning 引擎已经启动
	ErrEngineRunning = errors.New("engine already running")
)

// ToolboxNotFoundError 指明无法解析的工具箱 key
type ToolboxNotFoundError struct {
	Key string
}

func (e *ToolboxNotFoundError) Error() string {
	return fmt.Sprintf("toolbox not found: %q", e.Key)
}

// Unwrap 支持 errors.Is(err, ErrToolboxNotFound)
func (e *ToolboxNotFoundError) Unwrap() error { return ErrToolboxNotFound }

// ValidationStage 校验发生的阶段
type ValidationStage string

const (
	// StageInput 输入校验
	StageInput ValidationStage = "input"
	// StageOutput 输出校验
	StageOutput ValidationStage = "output"
)

// ValidationError Schema 校验失败
//
// Unwrap 返回 ErrInvalidToolArgs 或 ErrInvalidToolOutput，
// Cause 保存底层校验器的错误。
type ValidationError struct {
	Tool  string
	Stage ValidationStage
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %q: %s validation failed: %v", e.Tool, e.Stage, e.Cause)
}

// Unwrap 返回对应阶段的哨兵错误
func (e *ValidationError) Unwrap() []error {
	if e.Stage == StageOutput {
		return []error{ErrInvalidToolOutput, e.Cause}
	}
	return []error{ErrInvalidToolArgs, e.Cause}
}

// TaskError 任务运行失败
type TaskError struct {
	Task     string
	RunID    string
	Attempts int
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q (run %s) failed after %d attempt(s): %v", e.Task, e.RunID, e.Attempts, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// WrapError 包装错误并添加上下文信息
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrProviderUnavailable)
}

// IsFatal 判断错误是否为致命错误（不可恢复）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrToolboxNotFound) ||
		errors.Is(err, ErrTokenLimitExceeded) ||
		errors.Is(err, ErrInvalidToolArgs) ||
		errors.Is(err, ErrInvalidToolOutput)
}
