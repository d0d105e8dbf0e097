package message

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRole 无效的角色类型
	ErrInvalidRole = errors.New("invalid message role")
	// ErrEmptyContent 消息内容为空
	ErrEmptyContent = errors.New("message content cannot be empty")
	// ErrMissingToolCallID 工具消息缺少 tool_call_id
	ErrMissingToolCallID = errors.New("tool message requires tool_call_id")
	// ErrUnansweredToolCall 工具消息没有对应的助手工具调用
	ErrUnansweredToolCall = errors.New("tool message does not answer a pending tool call")
)

// HistoryError 对话历史中第 Index 条消息无效
type HistoryError struct {
	Index int
	Role  Role
	Err   error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("message %d (%s): %v", e.Index, e.Role, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}
